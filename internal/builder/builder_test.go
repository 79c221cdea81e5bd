package builder

import (
	"errors"
	"strings"
	"testing"

	"github.com/andressep95/SQLift/internal/analyzer"
	"github.com/andressep95/SQLift/internal/extractor"
	"github.com/andressep95/SQLift/internal/strategy"
	"github.com/andressep95/SQLift/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basePackage = "com.example.entity"

func analyzed(t *testing.T, sql string) *models.Schema {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	schema := extractor.New(logger).Extract(sql)
	analyzer.NewSchemaAnalyzer(schema, logger).AnalyzeSchema()
	return schema
}

func strategies(t *testing.T, lombok, jpa bool) []strategy.Strategy {
	t.Helper()
	s, err := strategy.New(lombok, jpa, "jakarta")
	require.NoError(t, err)
	return s
}

const catalogSchema = `
CREATE TABLE categorias (id SERIAL, nombre VARCHAR(50) NOT NULL, PRIMARY KEY (id));
CREATE TABLE productos (id SERIAL, categoria_id INTEGER NOT NULL, PRIMARY KEY (id), FOREIGN KEY (categoria_id) REFERENCES categorias(id));
`

func TestBuildCatalogWithLombokAndJPA(t *testing.T) {
	schema := analyzed(t, catalogSchema)
	b := NewEntityBuilder(basePackage, strategies(t, true, true))

	source, err := b.WithTable(schema.Table("categorias")).Build()
	require.NoError(t, err)
	assert.Equal(t, "Categoria", b.ClassName())
	assert.Equal(t, `package com.example.entity;

import jakarta.persistence.Column;
import jakarta.persistence.Entity;
import jakarta.persistence.GeneratedValue;
import jakarta.persistence.GenerationType;
import jakarta.persistence.Id;
import jakarta.persistence.OneToMany;
import jakarta.persistence.Table;
import java.util.ArrayList;
import java.util.List;
import lombok.AllArgsConstructor;
import lombok.Getter;
import lombok.NoArgsConstructor;
import lombok.Setter;

@Getter
@Setter
@NoArgsConstructor
@AllArgsConstructor
@Entity
@Table(name = "categorias")
public class Categoria {

    @Id
    @GeneratedValue(strategy = GenerationType.IDENTITY)
    @Column(name = "id")
    private Long id;

    @Column(name = "nombre", length = 50, nullable = false)
    private String nombre;

    @OneToMany(mappedBy = "categoria")
    private List<Producto> productos = new ArrayList<>();
}
`, source)
}

func TestBuildDirectAssociation(t *testing.T) {
	schema := analyzed(t, catalogSchema)
	b := NewEntityBuilder(basePackage, strategies(t, false, true))

	source, err := b.WithTable(schema.Table("productos")).Build()
	require.NoError(t, err)
	assert.Equal(t, "Producto", b.ClassName())
	assert.Contains(t, source, "public class Producto {")
	assert.Contains(t, source, "    @ManyToOne(fetch = FetchType.LAZY)\n    @JoinColumn(name = \"categoria_id\", nullable = false)\n    private Categoria categoria;\n")
	assert.NotContains(t, source, "categoriaId")
	assert.Contains(t, source, "    public Producto(Long id, Categoria categoria) {\n")
	assert.Contains(t, source, "    public Categoria getCategoria() {\n        return categoria;\n    }\n")
	assert.Contains(t, source, "    public void setCategoria(Categoria categoria) {\n        this.categoria = categoria;\n    }\n")
	assert.Equal(t, 1, strings.Count(source, "import jakarta.persistence.Column;"))
	assert.NotContains(t, source, "java.util.List")
}

func TestFieldOrderKeepsColumnOrder(t *testing.T) {
	schema := analyzed(t, `
		CREATE TABLE categorias (id SERIAL PRIMARY KEY);
		CREATE TABLE productos (
			nombre VARCHAR(80),
			categoria_id INTEGER REFERENCES categorias(id),
			precio NUMERIC(10,2) NOT NULL,
			id SERIAL PRIMARY KEY
		);`)
	table := schema.Table("productos")

	source, err := NewEntityBuilder("", nil).WithTable(table).Build()
	require.NoError(t, err)

	id := strings.Index(source, "private Long id;")
	categoria := strings.Index(source, "private Categoria categoria;")
	nombre := strings.Index(source, "private String nombre;")
	precio := strings.Index(source, "private BigDecimal precio;")
	require.True(t, id >= 0 && categoria >= 0 && nombre >= 0 && precio >= 0, source)
	assert.True(t, id < categoria && categoria < nombre && nombre < precio, source)
	assert.True(t, strings.HasPrefix(source, "import java.math.BigDecimal;\n\npublic class Producto {\n"), source)

	var names []string
	for _, col := range table.Columns {
		names = append(names, col.Name)
	}
	assert.Equal(t, []string{"nombre", "categoria_id", "precio", "id"}, names)
}

func TestBuildCompositeKey(t *testing.T) {
	schema := analyzed(t, `
		CREATE TABLE sucursales (id SERIAL PRIMARY KEY);
		CREATE TABLE productos (id SERIAL PRIMARY KEY);
		CREATE TABLE stock_sucursal (
			sucursal_id INTEGER REFERENCES sucursales(id) ON DELETE CASCADE,
			producto_id INTEGER REFERENCES productos(id),
			cantidad INTEGER NOT NULL,
			PRIMARY KEY (sucursal_id, producto_id)
		);`)

	b := NewEntityBuilder(basePackage, strategies(t, false, true))
	source, err := b.WithTable(schema.Table("stock_sucursal")).Build()
	require.NoError(t, err)

	assert.Contains(t, source, "    @EmbeddedId\n    private StockSucursalId id;\n")
	assert.Contains(t, source, "    @MapsId(\"sucursalId\")\n")
	assert.Contains(t, source, "    private Sucursale sucursal;\n")
	assert.Contains(t, source, "    private Producto producto;\n")
	assert.Contains(t, source, "    @Column(name = \"cantidad\", nullable = false)\n    private Integer cantidad;\n")
	assert.Contains(t, source, "    @Embeddable\n    public static class StockSucursalId implements Serializable {\n")
	assert.Contains(t, source, "        @Column(name = \"sucursal_id\", nullable = false)\n        private Integer sucursalId;\n")
	assert.Contains(t, source, "        public StockSucursalId(Integer sucursalId, Integer productoId) {\n")
	assert.Contains(t, source, "            StockSucursalId that = (StockSucursalId) o;\n")
	assert.Contains(t, source, "return Objects.equals(sucursalId, that.sucursalId)\n")
	assert.Contains(t, source, "&& Objects.equals(productoId, that.productoId);\n")
	assert.Contains(t, source, "            return Objects.hash(sucursalId, productoId);\n")
	assert.Contains(t, source, "import java.io.Serializable;\n")
	assert.Contains(t, source, "import java.util.Objects;\n")
	assert.Contains(t, source, "import jakarta.persistence.MapsId;\n")
	assert.True(t, strings.HasSuffix(source, "    }\n}\n"))

	sucursal, err := b.WithTable(schema.Table("sucursales")).Build()
	require.NoError(t, err)
	assert.Contains(t, sucursal, "    @OneToMany(mappedBy = \"sucursal\", cascade = CascadeType.ALL, orphanRemoval = true)\n    private List<StockSucursal> stockSucursals = new ArrayList<>();\n")
}

func TestBuildCompositeKeyWithLombok(t *testing.T) {
	schema := analyzed(t, `CREATE TABLE t (a INTEGER, b VARCHAR(5), PRIMARY KEY (a, b));`)
	source, err := NewEntityBuilder(basePackage, strategies(t, true, false)).WithTable(schema.Table("t")).Build()
	require.NoError(t, err)

	assert.Contains(t, source, "    @Getter\n    @Setter\n    @NoArgsConstructor\n    @AllArgsConstructor\n    public static class TId implements Serializable {\n")
	assert.NotContains(t, source, "public TId(")
	assert.NotContains(t, source, "getA()")
	assert.Contains(t, source, "public boolean equals(Object o)")
	assert.Contains(t, source, "return Objects.hash(a, b);")
}

func TestBuildManyToMany(t *testing.T) {
	schema := analyzed(t, `
		CREATE TABLE usuarios (id SERIAL PRIMARY KEY);
		CREATE TABLE roles (id SERIAL PRIMARY KEY);
		CREATE TABLE usuarios_roles (
			usuario_id INTEGER REFERENCES usuarios(id) ON DELETE CASCADE,
			rol_id INTEGER REFERENCES roles(id) ON DELETE CASCADE,
			PRIMARY KEY (usuario_id, rol_id)
		);`)
	b := NewEntityBuilder(basePackage, strategies(t, false, true))

	usuario, err := b.WithTable(schema.Table("usuarios")).Build()
	require.NoError(t, err)
	assert.Contains(t, usuario, "    @ManyToMany\n    @JoinTable(name = \"usuarios_roles\",\n")
	assert.Contains(t, usuario, "    private Set<Role> roles = new HashSet<>();\n")
	assert.Contains(t, usuario, "import java.util.HashSet;\nimport java.util.Set;\n")

	rol, err := b.WithTable(schema.Table("roles")).Build()
	require.NoError(t, err)
	assert.Contains(t, rol, "    @ManyToMany(mappedBy = \"roles\")\n    private Set<Usuario> usuarios = new HashSet<>();\n")
	assert.NotContains(t, rol, "JoinTable")
}

func TestBuildDefaultsAndUnresolvedKeys(t *testing.T) {
	schema := analyzed(t, `
		CREATE TABLE pedidos (
			id BIGSERIAL PRIMARY KEY,
			cliente_id INTEGER NOT NULL REFERENCES clientes(id),
			pagado BOOLEAN DEFAULT false,
			creado TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			entrega DATE DEFAULT CURRENT_TIMESTAMP
		);`)

	source, err := NewEntityBuilder(basePackage, nil).WithTable(schema.Table("pedidos")).Build()
	require.NoError(t, err)
	assert.Contains(t, source, "    private Integer clienteId;\n")
	assert.Contains(t, source, "    private Boolean pagado = false;\n")
	assert.Contains(t, source, "    private LocalDateTime creado = LocalDateTime.now();\n")
	assert.Contains(t, source, "    private LocalDate entrega;\n")
	assert.Contains(t, source, "import java.time.LocalDate;\nimport java.time.LocalDateTime;\n")
	assert.NotContains(t, source, "@")
}

func TestBuildSharedPrimaryKey(t *testing.T) {
	schema := analyzed(t, `
		CREATE TABLE usuarios (id SERIAL PRIMARY KEY);
		CREATE TABLE perfiles (usuario_id INTEGER PRIMARY KEY REFERENCES usuarios(id), bio TEXT);`)
	b := NewEntityBuilder(basePackage, strategies(t, false, true))

	perfil, err := b.WithTable(schema.Table("perfiles")).Build()
	require.NoError(t, err)
	assert.Contains(t, perfil, "    @Id\n    @Column(name = \"usuario_id\")\n    private Integer usuarioId;\n")
	assert.Contains(t, perfil, "    @OneToOne(fetch = FetchType.LAZY)\n    @MapsId\n    @JoinColumn(name = \"usuario_id\", nullable = false)\n    private Usuario usuario;\n")

	usuario, err := b.WithTable(schema.Table("usuarios")).Build()
	require.NoError(t, err)
	assert.Contains(t, usuario, "    @OneToOne(mappedBy = \"usuario\", fetch = FetchType.LAZY)\n    private Perfile perfile;\n")
}

func TestBuildErrors(t *testing.T) {
	_, err := NewEntityBuilder(basePackage, nil).Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoModel))

	schema := analyzed(t, `CREATE TABLE logs (mensaje TEXT);`)
	_, err = NewEntityBuilder(basePackage, nil).WithTable(schema.Table("logs")).Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingPrimaryKey))

	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, "Log", buildErr.Class)
	assert.Equal(t, "logs", buildErr.Table)
	assert.Equal(t, "sqlift: cannot build entity Log (table logs): sqlift: table has no primary key", err.Error())
}
