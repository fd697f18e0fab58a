package network

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    map[string]int
		wantErr bool
	}{
		{
			name: "row counts",
			yaml: "name: case14\ntables:\n  line: 20\n  trafo3w: 0\n  storage: 2\n",
			want: map[string]int{"line": 20, "trafo3w": 0, "storage": 2},
		},
		{
			name: "row lists",
			yaml: "name: case5\ntables:\n  switch:\n    - {bus: 1}\n    - {bus: 2}\n",
			want: map[string]int{"switch": 2},
		},
		{
			name: "empty tables section",
			yaml: "name: bare\n",
			want: map[string]int{},
		},
		{
			name:    "table value is a mapping",
			yaml:    "tables:\n  line: {rows: 3}\n",
			wantErr: true,
		},
		{
			name:    "not yaml",
			yaml:    "{{{",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Parse() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if len(d.Tables) != len(tt.want) {
				t.Fatalf("Parse() tables = %v, want %v", d.Tables, tt.want)
			}
			for table, rows := range tt.want {
				if d.Tables[table] != rows {
					t.Errorf("table %q rows = %d, want %d", table, d.Tables[table], rows)
				}
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "net.yaml")
	content := "name: case118\ntables:\n  line: 186\n  motor: 1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if d.Name != "case118" {
		t.Errorf("Name = %q, want case118", d.Name)
	}
	if d.RowCount("motor") != 1 {
		t.Errorf("RowCount(motor) = %d, want 1", d.RowCount("motor"))
	}
	if d.RowCount("absent") != 0 {
		t.Errorf("RowCount(absent) = %d, want 0", d.RowCount("absent"))
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile() on missing file expected error, got nil")
	}
}
