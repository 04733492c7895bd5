package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JulianC775/CodeClip/internal/apperr"
	"github.com/JulianC775/CodeClip/internal/models"
)

func sample(id, title string) models.Snippet {
	ts := time.UnixMilli(1700000000000)
	return models.Snippet{
		ID:        id,
		Title:     title,
		Language:  "go",
		Code:      "package main",
		Tags:      []string{"sort", "algo"},
		Favorite:  true,
		CreatedAt: ts,
		UpdatedAt: ts.Add(time.Minute),
	}
}

func TestRoundTrip(t *testing.T) {
	in := []models.Snippet{sample("a", "Quick sort"), sample("b", "Binary search")}

	data, err := Serialize(in)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	out, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	byID := make(map[string]models.Snippet, len(out))
	for _, s := range out {
		byID[s.ID] = s
	}
	for _, want := range in {
		got, ok := byID[want.ID]
		if !ok {
			t.Fatalf("snippet %q missing after round trip", want.ID)
		}
		if got.Title != want.Title || got.Language != want.Language || got.Code != want.Code {
			t.Errorf("snippet %q fields changed: got %+v", want.ID, got)
		}
		if len(got.Tags) != len(want.Tags) {
			t.Errorf("snippet %q tags = %v, want %v", want.ID, got.Tags, want.Tags)
		}
		if got.Favorite != want.Favorite {
			t.Errorf("snippet %q favorite = %v", want.ID, got.Favorite)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
			t.Errorf("snippet %q timestamps changed: %v/%v", want.ID, got.CreatedAt, got.UpdatedAt)
		}
	}
}

func TestSerializeDeterministic(t *testing.T) {
	// Same collection in different input order must produce identical text.
	a, b := sample("a", "A"), sample("b", "B")
	first, err := Serialize([]models.Snippet{a, b})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	second, err := Serialize([]models.Snippet{b, a})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("output depends on input order")
	}
}

func TestSerializeEmpty(t *testing.T) {
	data, err := Serialize(nil)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	out, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}
}

func TestDeserializeMalformed(t *testing.T) {
	cases := []string{
		"",
		"not json",
		"{",
		`{"version": 99, "snippets": []}`,
		`{"version": 0, "snippets": []}`,
	}
	for _, c := range cases {
		if _, err := Deserialize([]byte(c)); !errors.Is(err, apperr.ErrMalformedEncoding) {
			t.Errorf("Deserialize(%q) = %v, want ErrMalformedEncoding", c, err)
		}
	}
}

func TestDeserializeRejectsInvalidEntry(t *testing.T) {
	// One structurally invalid entry among valid ones rejects everything.
	payload := `{
  "version": 1,
  "snippets": [
    {"id": "a", "title": "A", "language": "go", "code": "x", "tags": ["t"], "favorite": false, "created_at": 1, "updated_at": 1},
    {"id": "b", "title": "B", "language": "go", "code": "x", "tags": "not-a-list", "favorite": false, "created_at": 1, "updated_at": 1},
    {"id": "c", "title": "C", "language": "go", "code": "x", "tags": [], "favorite": false, "created_at": 1, "updated_at": 1}
  ]
}`
	out, err := Deserialize([]byte(payload))
	if !errors.Is(err, apperr.ErrStructuralMismatch) {
		t.Fatalf("err = %v, want ErrStructuralMismatch", err)
	}
	if out != nil {
		t.Error("partial result returned on rejected payload")
	}
}

func TestDeserializeFieldTypes(t *testing.T) {
	cases := []struct {
		name  string
		entry string
	}{
		{"id not text", `{"id": 5, "title": "A", "language": "go", "code": "x", "created_at": 1, "updated_at": 1}`},
		{"title missing", `{"id": "a", "language": "go", "code": "x", "created_at": 1, "updated_at": 1}`},
		{"favorite not bool", `{"id": "a", "title": "A", "language": "go", "code": "x", "favorite": "yes", "created_at": 1, "updated_at": 1}`},
		{"created_at not numeric", `{"id": "a", "title": "A", "language": "go", "code": "x", "created_at": "then", "updated_at": 1}`},
		{"tags with non-text item", `{"id": "a", "title": "A", "language": "go", "code": "x", "tags": ["ok", 3], "created_at": 1, "updated_at": 1}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			payload := `{"version": 1, "snippets": [` + c.entry + `]}`
			if _, err := Deserialize([]byte(payload)); !errors.Is(err, apperr.ErrStructuralMismatch) {
				t.Errorf("err = %v, want ErrStructuralMismatch", err)
			}
		})
	}
}

func TestDeserializeRepeatedID(t *testing.T) {
	payload := `{"version": 1, "snippets": [
		{"id": "a", "title": "A", "language": "go", "code": "x", "created_at": 1, "updated_at": 1},
		{"id": "a", "title": "A again", "language": "go", "code": "y", "created_at": 1, "updated_at": 1}
	]}`
	if _, err := Deserialize([]byte(payload)); !errors.Is(err, apperr.ErrStructuralMismatch) {
		t.Errorf("err = %v, want ErrStructuralMismatch", err)
	}
}

func TestDeserializeOptionalFields(t *testing.T) {
	// tags and favorite may be absent; extra keys from newer revisions are tolerated.
	payload := `{"version": 1, "snippets": [
		{"id": "a", "title": "A", "language": "go", "code": "x", "created_at": 1, "updated_at": 1, "color": "red"}
	]}`
	out, err := Deserialize([]byte(payload))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len = %d", len(out))
	}
	if out[0].Tags == nil || len(out[0].Tags) != 0 {
		t.Errorf("tags = %#v, want empty non-nil slice", out[0].Tags)
	}
	if out[0].Favorite {
		t.Error("favorite should default to false")
	}
}

func TestSerializedFormIsHumanDiffable(t *testing.T) {
	data, err := Serialize([]models.Snippet{sample("a", "A")})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("expected indented multi-line output")
	}
	if !strings.Contains(string(data), `"version": 1`) {
		t.Error("expected version field in envelope")
	}
}
