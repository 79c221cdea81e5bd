package analyzer

import (
	"fmt"
	"testing"

	"github.com/andressep95/SQLift/internal/extractor"
	"github.com/andressep95/SQLift/pkg/models"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

// analyze extracts and analyzes the given schema text
func analyze(t *testing.T, sql string) *SchemaAnalyzer {
	t.Helper()
	logger := newTestLogger()
	schema := extractor.New(logger).Extract(sql)
	analyzer := NewSchemaAnalyzer(schema, logger)
	analyzer.AnalyzeSchema()
	return analyzer
}

func relationsOf(table *models.Table, kind models.RelationKind) []*models.Relationship {
	var out []*models.Relationship
	for _, rel := range table.Relations() {
		if rel.Kind == kind {
			out = append(out, rel)
		}
	}
	return out
}

func TestNewSchemaAnalyzer(t *testing.T) {
	logger := newTestLogger()
	schema := models.NewSchema()

	// Create a new schema analyzer
	analyzer := NewSchemaAnalyzer(schema, logger)

	// Check that the analyzer was created correctly
	if analyzer == nil {
		t.Fatal("Expected analyzer to be created, got nil")
	}
	if analyzer.Schema != schema {
		t.Error("Expected analyzer.Schema to be the given schema")
	}
	if analyzer.Logger != logger {
		t.Error("Expected analyzer.Logger to be the test logger")
	}
	if analyzer.TableIndexMap == nil || analyzer.IndexTableMap == nil {
		t.Error("Expected index maps to be initialized")
	}
	if analyzer.JunctionTables == nil || analyzer.Unresolved == nil || analyzer.SelfReferences == nil {
		t.Error("Expected analysis maps to be initialized")
	}
}

func TestDirectAndInverseRelations(t *testing.T) {
	analyzer := analyze(t, `
		CREATE TABLE categorias (id SERIAL, nombre VARCHAR(50) NOT NULL, PRIMARY KEY (id));
		CREATE TABLE productos (id SERIAL, categoria_id INTEGER NOT NULL, PRIMARY KEY (id),
			FOREIGN KEY (categoria_id) REFERENCES categorias(id));`)

	productos := analyzer.Schema.Table("productos")
	direct := relationsOf(productos, models.Direct)
	if len(direct) != 1 {
		t.Fatalf("Expected 1 direct relation on productos, got %d", len(direct))
	}
	if direct[0].Target != "categorias" || direct[0].FieldName != "categoria" {
		t.Errorf("Expected direct relation categoria -> categorias, got %s -> %s", direct[0].FieldName, direct[0].Target)
	}
	if direct[0].Cardinality != models.ManyToOne || !direct[0].Owner() {
		t.Errorf("Expected owning many-to-one, got %s owner=%t", direct[0].Cardinality, direct[0].Owner())
	}

	categorias := analyzer.Schema.Table("categorias")
	inverse := relationsOf(categorias, models.Inverse)
	if len(inverse) != 1 {
		t.Fatalf("Expected 1 inverse relation on categorias, got %d", len(inverse))
	}
	if inverse[0].FieldName != "productos" || inverse[0].Cardinality != models.OneToMany {
		t.Errorf("Expected one-to-many productos, got %s %s", inverse[0].FieldName, inverse[0].Cardinality)
	}
	if inverse[0].MappedBy() != "categoria" {
		t.Errorf("Expected inverse mapped by categoria, got %q", inverse[0].MappedBy())
	}
	if inverse[0].Owner() {
		t.Error("Expected inverse side not to own the foreign key")
	}
}

const junctionSchema = `
	CREATE TABLE usuarios (id SERIAL PRIMARY KEY, nombre TEXT);
	CREATE TABLE roles (id SERIAL PRIMARY KEY, nombre TEXT);
	CREATE TABLE usuarios_roles (
		usuario_id INTEGER NOT NULL,
		rol_id INTEGER NOT NULL,
		PRIMARY KEY (usuario_id, rol_id),
		FOREIGN KEY (usuario_id) REFERENCES usuarios(id) %s,
		FOREIGN KEY (rol_id) REFERENCES roles(id)
	);`

func TestDetectJunctionTables(t *testing.T) {
	analyzer := analyze(t, fmt.Sprintf(junctionSchema, "ON DELETE CASCADE"))

	junction := analyzer.Schema.Table("usuarios_roles")
	if junction.Category != models.Junction {
		t.Fatalf("Expected usuarios_roles to be JUNCTION, got %s", junction.Category)
	}
	if junction.JunctionOf != [2]string{"usuarios", "roles"} {
		t.Errorf("Unexpected junction ends %v", junction.JunctionOf)
	}
	if !analyzer.JunctionTables["usuarios_roles"] {
		t.Error("Expected usuarios_roles in JunctionTables")
	}

	usuarios := analyzer.Schema.Table("usuarios")
	if n := len(relationsOf(usuarios, models.Inverse)); n != 0 {
		t.Errorf("Expected inverse edges replaced on usuarios, got %d", n)
	}
	owner := relationsOf(usuarios, models.ManyToManyOwner)
	if len(owner) != 1 {
		t.Fatalf("Expected 1 many-to-many owner on usuarios, got %d", len(owner))
	}
	if owner[0].FieldName != "roles" || owner[0].Via != "usuarios_roles" ||
		owner[0].JoinColumn != "usuario_id" || owner[0].InverseJoin != "rol_id" {
		t.Errorf("Unexpected owner relation %+v", owner[0])
	}

	roles := analyzer.Schema.Table("roles")
	mapped := relationsOf(roles, models.ManyToManyInverse)
	if len(mapped) != 1 {
		t.Fatalf("Expected 1 many-to-many inverse on roles, got %d", len(mapped))
	}
	if mapped[0].FieldName != "usuarios" || mapped[0].MappedBy() != "roles" {
		t.Errorf("Expected usuarios mapped by roles, got %s mapped by %s", mapped[0].FieldName, mapped[0].MappedBy())
	}
}

func TestJunctionWithoutReferentialClauseIsRegular(t *testing.T) {
	analyzer := analyze(t, fmt.Sprintf(junctionSchema, ""))

	junction := analyzer.Schema.Table("usuarios_roles")
	if junction.Category != models.Regular {
		t.Fatalf("Expected usuarios_roles to stay REGULAR, got %s", junction.Category)
	}
	if n := len(relationsOf(junction, models.Direct)); n != 2 {
		t.Errorf("Expected 2 direct relations, got %d", n)
	}
	if n := len(relationsOf(analyzer.Schema.Table("usuarios"), models.Inverse)); n != 1 {
		t.Errorf("Expected 1 inverse relation on usuarios, got %d", n)
	}
	if len(analyzer.JunctionTables) != 0 {
		t.Errorf("Expected no junction tables, got %v", analyzer.JunctionTables)
	}
}

func TestJunctionNaming(t *testing.T) {
	tests := []struct {
		name, a, b string
		want       bool
	}{
		{"usuarios_roles", "usuarios", "roles", true},
		{"roles_usuarios", "usuarios", "roles", true},
		{"usuario_rol", "usuarios", "rols", true},
		{"producto_tag_map", "productos", "tags", true},
		{"asignaciones_rel", "a", "b", true},
		{"stock_sucursal", "sucursales", "productos", false},
		{"membership", "usuarios", "grupos", false},
	}

	for _, tt := range tests {
		if got := junctionName(tt.name, tt.a, tt.b); got != tt.want {
			t.Errorf("junctionName(%s, %s, %s) = %t, want %t", tt.name, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNamingMismatchStaysRegular(t *testing.T) {
	analyzer := analyze(t, `
		CREATE TABLE sucursales (id SERIAL PRIMARY KEY);
		CREATE TABLE productos (id SERIAL PRIMARY KEY);
		CREATE TABLE stock_sucursal (
			sucursal_id INTEGER REFERENCES sucursales(id) ON DELETE CASCADE,
			producto_id INTEGER REFERENCES productos(id) ON DELETE CASCADE,
			cantidad INTEGER NOT NULL,
			PRIMARY KEY (sucursal_id, producto_id)
		);`)

	stock := analyzer.Schema.Table("stock_sucursal")
	if stock.Category != models.Regular {
		t.Errorf("Expected stock_sucursal to stay REGULAR, got %s", stock.Category)
	}
	inverse := relationsOf(analyzer.Schema.Table("sucursales"), models.Inverse)
	if len(inverse) != 1 || inverse[0].FieldName != "stockSucursals" {
		t.Fatalf("Expected stockSucursals inverse on sucursales, got %v", inverse)
	}
	if len(inverse[0].Cascade) != 1 || inverse[0].Cascade[0] != models.CascadeAll || !inverse[0].OrphanRemoval {
		t.Errorf("Expected cascade ALL with orphan removal from ON DELETE CASCADE, got %v", inverse[0].Cascade)
	}
}

func TestCascadeOnlyOnParentSide(t *testing.T) {
	analyzer := analyze(t, `
		CREATE TABLE pedidos (id SERIAL PRIMARY KEY);
		CREATE TABLE lineas (
			id SERIAL PRIMARY KEY,
			pedido_id INTEGER NOT NULL REFERENCES pedidos(id) ON DELETE CASCADE
		);`)

	direct := relationsOf(analyzer.Schema.Table("lineas"), models.Direct)
	if len(direct) != 1 {
		t.Fatalf("Expected 1 direct relation on lineas, got %d", len(direct))
	}
	if len(direct[0].Cascade) != 0 || direct[0].OrphanRemoval {
		t.Errorf("Expected no cascade on the owning side, got %v", direct[0].Cascade)
	}
	inverse := relationsOf(analyzer.Schema.Table("pedidos"), models.Inverse)
	if len(inverse) != 1 || len(inverse[0].Cascade) != 1 || inverse[0].Cascade[0] != models.CascadeAll {
		t.Errorf("Expected cascade ALL on the parent side, got %v", inverse)
	}
}

func TestJoinReferenceOnNonKeyColumn(t *testing.T) {
	analyzer := analyze(t, `
		CREATE TABLE paises (id SERIAL PRIMARY KEY, codigo VARCHAR(3) UNIQUE NOT NULL);
		CREATE TABLE ciudades (
			id SERIAL PRIMARY KEY,
			pais_codigo VARCHAR(3) REFERENCES paises(codigo),
			pais_id INTEGER REFERENCES paises(id),
			region_id INTEGER REFERENCES regiones
		);
		CREATE TABLE regiones (codigo_region INTEGER PRIMARY KEY);`)

	refs := map[string]string{}
	for _, rel := range relationsOf(analyzer.Schema.Table("ciudades"), models.Direct) {
		refs[rel.ForeignKey.Column] = rel.JoinReference
	}
	if refs["pais_codigo"] != "codigo" {
		t.Errorf("Expected pais_codigo to reference codigo, got %q", refs["pais_codigo"])
	}
	if refs["pais_id"] != "" {
		t.Errorf("Expected no join reference for a primary key target, got %q", refs["pais_id"])
	}
	if refs["region_id"] != "" {
		t.Errorf("Expected no join reference when the column list is omitted, got %q", refs["region_id"])
	}
}

func TestSelfReference(t *testing.T) {
	analyzer := analyze(t, `
		CREATE TABLE empleados (
			id SERIAL PRIMARY KEY,
			jefe_id INTEGER REFERENCES empleados(id)
		);`)

	empleados := analyzer.Schema.Table("empleados")
	direct := relationsOf(empleados, models.Direct)
	inverse := relationsOf(empleados, models.Inverse)
	if len(direct) != 1 || len(inverse) != 1 {
		t.Fatalf("Expected one direct and one inverse relation, got %d and %d", len(direct), len(inverse))
	}
	if direct[0].FieldName != "jefe" || inverse[0].FieldName != "empleados" {
		t.Errorf("Unexpected field names %s, %s", direct[0].FieldName, inverse[0].FieldName)
	}
	if len(analyzer.SelfReferences["empleados"]) != 1 {
		t.Error("Expected empleados to be recorded as self-referencing")
	}
	if analyzer.DependencyGraph.Edge(0, 0) {
		t.Error("Expected no self loop in the dependency graph")
	}
}

func TestUnresolvedForeignKey(t *testing.T) {
	analyzer := analyze(t, `
		CREATE TABLE pedidos (
			id SERIAL PRIMARY KEY,
			cliente_id INTEGER NOT NULL REFERENCES clientes(id)
		);`)

	pedidos := analyzer.Schema.Table("pedidos")
	if len(pedidos.Relations()) != 0 {
		t.Errorf("Expected no relations for an unresolved key, got %d", len(pedidos.Relations()))
	}
	if len(pedidos.ForeignKeys) != 1 {
		t.Error("Expected the unresolved foreign key to be kept on the table")
	}
	if counts := analyzer.UnresolvedCounts(); counts["pedidos"] != 1 {
		t.Errorf("Expected 1 unresolved reference for pedidos, got %v", counts)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	analyzer := analyze(t, fmt.Sprintf(junctionSchema, "ON DELETE CASCADE")+`
		CREATE TABLE sesiones (id SERIAL PRIMARY KEY, usuario_id INTEGER REFERENCES usuarios(id));`)

	before := make(map[string][]string)
	for _, table := range analyzer.Schema.Tables {
		for _, rel := range table.Relations() {
			before[table.Name] = append(before[table.Name], rel.Key()+"="+rel.FieldName)
		}
	}

	analyzer.AnalyzeSchema()

	for _, table := range analyzer.Schema.Tables {
		var after []string
		for _, rel := range table.Relations() {
			after = append(after, rel.Key()+"="+rel.FieldName)
		}
		if len(after) != len(before[table.Name]) {
			t.Fatalf("Table %s: expected %d relations after re-analysis, got %d", table.Name, len(before[table.Name]), len(after))
		}
		for i := range after {
			if after[i] != before[table.Name][i] {
				t.Errorf("Table %s: relation %d changed from %s to %s", table.Name, i, before[table.Name][i], after[i])
			}
		}
	}
}

func TestInverseNameCollision(t *testing.T) {
	analyzer := analyze(t, `
		CREATE TABLE sucursales (id SERIAL PRIMARY KEY);
		CREATE TABLE movimientos (
			id SERIAL PRIMARY KEY,
			sucursal_origen_id INTEGER NOT NULL REFERENCES sucursales(id),
			sucursal_destino_id INTEGER REFERENCES sucursales(id)
		);`)

	inverse := relationsOf(analyzer.Schema.Table("sucursales"), models.Inverse)
	if len(inverse) != 2 {
		t.Fatalf("Expected 2 inverse relations, got %d", len(inverse))
	}
	if inverse[0].FieldName != "movimientos" {
		t.Errorf("Expected first inverse named movimientos, got %s", inverse[0].FieldName)
	}
	if inverse[1].FieldName != "movimientosSucursalDestino" {
		t.Errorf("Expected second inverse named movimientosSucursalDestino, got %s", inverse[1].FieldName)
	}
}

func TestDirectNameCollision(t *testing.T) {
	analyzer := analyze(t, `
		CREATE TABLE categorias (id SERIAL PRIMARY KEY);
		CREATE TABLE productos (
			id SERIAL PRIMARY KEY,
			categoria TEXT,
			categoria_id INTEGER REFERENCES categorias(id)
		);`)

	direct := relationsOf(analyzer.Schema.Table("productos"), models.Direct)
	if len(direct) != 1 || direct[0].FieldName != "categoriaId" {
		t.Errorf("Expected direct field categoriaId next to a categoria column, got %v", direct)
	}
}

func TestGetTableInsertionOrder(t *testing.T) {
	analyzer := analyze(t, `
		CREATE TABLE comments (id SERIAL PRIMARY KEY, post_id INT NOT NULL REFERENCES posts(id), user_id INT REFERENCES users(id));
		CREATE TABLE user_posts (user_id INT REFERENCES users(id) ON DELETE CASCADE, post_id INT REFERENCES posts(id), PRIMARY KEY (user_id, post_id));
		CREATE TABLE posts (id SERIAL PRIMARY KEY, user_id INT NOT NULL REFERENCES users(id));
		CREATE TABLE users (id SERIAL PRIMARY KEY);`)

	order, circular := analyzer.GetTableInsertionOrder()
	if len(order) != 4 {
		t.Fatalf("Expected 4 tables, got %v", order)
	}
	if len(circular) != 0 {
		t.Errorf("Expected no circular tables, got %v", circular)
	}

	position := make(map[string]int)
	for i, table := range order {
		position[table] = i
	}
	if position["users"] > position["posts"] || position["posts"] > position["comments"] {
		t.Errorf("Expected users before posts before comments, got %v", order)
	}
	if order[len(order)-1] != "user_posts" {
		t.Errorf("Expected junction table user_posts last, got %v", order)
	}
}

func TestCircularGroups(t *testing.T) {
	analyzer := analyze(t, `
		CREATE TABLE departamentos (id SERIAL PRIMARY KEY, gerente_id INT REFERENCES empleados(id));
		CREATE TABLE empleados (id SERIAL PRIMARY KEY, departamento_id INT NOT NULL REFERENCES departamentos(id));
		CREATE TABLE tareas (id SERIAL PRIMARY KEY, empleado_id INT NOT NULL REFERENCES empleados(id));`)

	if len(analyzer.CircularGroups) != 1 {
		t.Fatalf("Expected 1 circular group, got %v", analyzer.CircularGroups)
	}
	group := analyzer.CircularGroups[0]
	if len(group) != 2 || group[0] != "departamentos" || group[1] != "empleados" {
		t.Errorf("Unexpected circular group %v", group)
	}

	order, circular := analyzer.GetTableInsertionOrder()
	if !circular["empleados"] || !circular["departamentos"] || circular["tareas"] {
		t.Errorf("Unexpected circular tables %v", circular)
	}
	position := make(map[string]int)
	for i, table := range order {
		position[table] = i
	}
	if len(order) != 3 || position["empleados"] > position["tareas"] {
		t.Errorf("Expected empleados before tareas, got %v", order)
	}
}
