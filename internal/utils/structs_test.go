package utils

import (
	"testing"

	"github.com/m-mizutani/gt"
)

type row struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Ignored string `db:"-"`
	NoTag   string
	hidden  string `db:"hidden"`
}

func TestStructTagValues(t *testing.T) {
	gt.Equal(t, StructTagValues(row{}), []string{"id", "name"})
	gt.Equal(t, StructTagValues(&row{}), []string{"id", "name"})
}

func TestStructToMap(t *testing.T) {
	r := &row{ID: "a", Name: "b", hidden: "c"}

	m := StructToMap(r)
	gt.Equal(t, len(m), 2)
	gt.Equal(t, m["id"], any("a"))
	gt.Equal(t, m["name"], any("b"))

	m = StructToMap(r, "id")
	gt.Equal(t, len(m), 1)
	_, ok := m["id"]
	gt.False(t, ok)
}

func TestNullableString(t *testing.T) {
	gt.True(t, NullableString("") == nil)
	gt.True(t, NullableString("   ") == nil)
	gt.Equal(t, PtrString(NullableString("  pothole ")), "pothole")
}

func TestToken(t *testing.T) {
	tok := Token(8)
	gt.Equal(t, len(tok), 8)
	gt.True(t, tok != Token(8))
}
