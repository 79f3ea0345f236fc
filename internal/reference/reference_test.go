package reference

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type widget struct {
	ID   uint `gorm:"primarykey"`
	Name string
}

func (w *widget) RefType() string { return "widget" }
func (w *widget) RefID() uint     { return w.ID }

func setupRegistryTest(t *testing.T) (*Registry, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:reference_registry?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.Migrator().DropTable(&widget{}); err != nil {
		t.Fatalf("drop widget failed: %v", err)
	}
	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("migrate widget failed: %v", err)
	}
	registry := NewRegistry(db)
	Register[widget](registry, "Widget")
	return registry, db
}

func TestParseRef(t *testing.T) {
	ref, err := Parse(" Product#12 ")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ref.Type != "product" || ref.ID != 12 {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if ref.String() != "product#12" {
		t.Fatalf("string mismatch: %s", ref.String())
	}

	for _, raw := range []string{"", "product", "product#", "product#abc", "#3", "product#0"} {
		if _, err := Parse(raw); !errors.Is(err, ErrInvalid) {
			t.Fatalf("parse %q want ErrInvalid got %v", raw, err)
		}
	}
}

func TestRefEqualNormalizesType(t *testing.T) {
	if !New("PRODUCT", 3).Equal(Ref{Type: "product", ID: 3}) {
		t.Fatalf("refs should be equal")
	}
	if New("product", 3).Equal(New("user", 3)) {
		t.Fatalf("different types should not be equal")
	}
	if !(Ref{}).IsZero() {
		t.Fatalf("empty ref should be zero")
	}
}

func TestRegistryResolve(t *testing.T) {
	registry, db := setupRegistryTest(t)
	w := &widget{Name: "gear"}
	if err := db.Create(w).Error; err != nil {
		t.Fatalf("create widget failed: %v", err)
	}

	entity, err := registry.Resolve(Of(w))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	got, ok := entity.(*widget)
	if !ok || got.Name != "gear" {
		t.Fatalf("unexpected entity: %#v", entity)
	}

	if _, err := registry.Resolve(New("widget", w.ID+100)); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("missing record want ErrUnresolved got %v", err)
	}
	if _, err := registry.Resolve(New("gadget", w.ID)); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("unknown type want ErrUnresolved got %v", err)
	}
	if _, err := registry.Resolve(Ref{}); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("zero ref want ErrUnresolved got %v", err)
	}
}

func TestRegistryTypes(t *testing.T) {
	registry, _ := setupRegistryTest(t)
	registry.RegisterLoader("alpha", func(db *gorm.DB, id uint) (Entity, error) { return nil, nil })
	types := registry.Types()
	if len(types) != 2 || types[0] != "alpha" || types[1] != "widget" {
		t.Fatalf("unexpected types: %v", types)
	}
	if !registry.Known("WIDGET") {
		t.Fatalf("widget should be known")
	}
	var nilRegistry *Registry
	if nilRegistry.Known("widget") {
		t.Fatalf("nil registry knows nothing")
	}
}
