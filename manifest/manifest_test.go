package manifest

import (
	"testing"
)

func TestManifestValidate(t *testing.T) {
	valid := Manifest{
		Name:        "openai-embed",
		DisplayName: "OpenAI Embeddings",
		Description: "Text embeddings via the OpenAI API",
		Version:     "1.0.0",
		Type:        TypeTextVectorizer,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid manifest rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Manifest)
	}{
		{"missing name", func(m *Manifest) { m.Name = "" }},
		{"missing version", func(m *Manifest) { m.Version = "" }},
		{"unknown type", func(m *Manifest) { m.Type = "llm" }},
		{"empty type", func(m *Manifest) { m.Type = "" }},
		{"unknown runtime", func(m *Manifest) { m.Runtime = "daemon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)
			if err := m.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestManifestIsService(t *testing.T) {
	m := Manifest{Runtime: RuntimeService}
	if !m.IsService() {
		t.Error("expected service runtime")
	}
	if (Manifest{}).IsService() {
		t.Error("expected non-service for empty runtime")
	}
}

func TestTypeValid(t *testing.T) {
	for _, typ := range Types() {
		if !typ.Valid() {
			t.Errorf("type %s should be valid", typ)
		}
	}
	if Type("vectorizer").Valid() {
		t.Error("unknown type should be invalid")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
name: minio-storage
displayName: MinIO Storage
description: Object storage backend
version: 0.3.1
type: storage
runtime: service
`)
	m, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if m.Name != "minio-storage" {
		t.Errorf("expected name 'minio-storage', got %s", m.Name)
	}
	if m.Type != TypeStorage {
		t.Errorf("expected type storage, got %s", m.Type)
	}
	if !m.IsService() {
		t.Error("expected service runtime")
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("name: x\nversion: 1.0.0\ntype: nope\n")); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := Parse([]byte("{not yaml")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
