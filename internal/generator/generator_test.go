package generator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andressep95/SQLift/internal/builder"
	"github.com/andressep95/SQLift/internal/strategy"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

const storeSchema = `
CREATE TABLE sucursales (id SERIAL PRIMARY KEY, nombre VARCHAR(100) NOT NULL UNIQUE);
CREATE TABLE categorias (id SERIAL, nombre VARCHAR(50) NOT NULL, PRIMARY KEY (id));
CREATE TABLE productos (
    id SERIAL,
    categoria_id INTEGER NOT NULL,
    proveedor_id INTEGER REFERENCES proveedores(id),
    PRIMARY KEY (id),
    FOREIGN KEY (categoria_id) REFERENCES categorias(id)
);
CREATE TABLE productos_sucursales (
    producto_id INTEGER REFERENCES productos(id) ON DELETE CASCADE,
    sucursal_id INTEGER REFERENCES sucursales(id) ON DELETE CASCADE,
    PRIMARY KEY (producto_id, sucursal_id)
);
CREATE TABLE auditoria (evento TEXT NOT NULL);
`

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine("PostgreSQL", newTestLogger())
	require.NoError(t, err)
	assert.Equal(t, "postgresql", engine.Name())

	_, err = NewEngine("postgres", newTestLogger())
	require.NoError(t, err)

	_, err = NewEngine("oracle", newTestLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedEngine))

	_, err = New(Settings{Engine: "mysql"}, newTestLogger())
	assert.True(t, errors.Is(err, ErrUnsupportedEngine))
}

func TestGenerate(t *testing.T) {
	strategies, err := strategy.New(false, true, "jakarta")
	require.NoError(t, err)
	g, err := New(Settings{Engine: "postgresql", BasePackage: "com.example.entity", Strategies: strategies}, newTestLogger())
	require.NoError(t, err)

	result, err := g.Generate(storeSchema)
	require.Error(t, err)
	assert.True(t, errors.Is(err, builder.ErrMissingPrimaryKey))

	var classes []string
	for _, f := range result.Files {
		classes = append(classes, f.Class)
	}
	assert.Equal(t, []string{"Sucursale", "Categoria", "Producto"}, classes)
	assert.Equal(t, []string{"productos_sucursales"}, result.Skipped)
	require.Len(t, result.Failures, 1)

	var buildErr *builder.BuildError
	require.True(t, errors.As(result.Failures[0], &buildErr))
	assert.Equal(t, "auditoria", buildErr.Table)

	assert.Equal(t, map[string]int{"productos": 1}, result.Unresolved)
	assert.Equal(t, filepath.Join("com", "example", "entity", "Producto.java"), result.Files[2].Path)
	assert.Contains(t, result.Files[2].Source, "private Integer proveedorId;")
	assert.Contains(t, result.Files[2].Source, "private Set<Sucursale> sucursales = new HashSet<>();")
	assert.Contains(t, result.Files[0].Source, "@ManyToMany(mappedBy = \"sucursales\")")
}

func TestGenerateEmptyInput(t *testing.T) {
	g, err := New(Settings{Engine: "postgresql"}, newTestLogger())
	require.NoError(t, err)

	result, err := g.Generate("-- nothing here")
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Empty(t, result.Failures)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("cl", "playground", "entity", "Producto.java"), OutputPath("cl.playground.entity", "Producto"))
	assert.Equal(t, "Producto.java", OutputPath("", "Producto"))
}

func TestFileWriter(t *testing.T) {
	root := t.TempDir()
	writer := NewFileWriter(filepath.Join(root, "src", "main", "java"), newTestLogger())

	files := []GeneratedFile{
		{Table: "categorias", Class: "Categoria", Path: OutputPath("com.example", "Categoria"), Source: "class Categoria {}\n"},
		{Table: "productos", Class: "Producto", Path: OutputPath("com.example", "Producto"), Source: "class Producto {}\n"},
	}
	require.NoError(t, writer.Write(files))

	data, err := os.ReadFile(filepath.Join(root, "src", "main", "java", "com", "example", "Producto.java"))
	require.NoError(t, err)
	assert.Equal(t, "class Producto {}\n", string(data))
}
