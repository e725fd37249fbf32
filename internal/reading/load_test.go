package reading

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	d, err := LoadJSON(strings.NewReader(`{"漢":["かん"],"字":["じ","あざ","あざな"]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := d.Lookup('字')
	if !ok || !reflect.DeepEqual(got, []string{"じ", "あざ", "あざな"}) {
		t.Errorf("Lookup('字') = %v, %v", got, ok)
	}
}

func TestLoadJSONRejectsMultiRuneKey(t *testing.T) {
	_, err := LoadJSON(strings.NewReader(`{"漢字":["かんじ"]}`))
	if err == nil {
		t.Fatal("expected error for multi-rune key")
	}
}

func TestLoadJSONLSkipsMalformed(t *testing.T) {
	input := strings.Join([]string{
		`{"character":"校","readings":["こう"]}`,
		`not json`,
		``,
		`{"character":"庭庭","readings":["てい"]}`,
		`{"character":"庭","readings":["てい","にわ"]}`,
	}, "\n")

	d, err := LoadJSONL(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Size() != 2 {
		t.Errorf("Size() = %d, want 2", d.Size())
	}
	if got, _ := d.First('庭'); got != "てい" {
		t.Errorf("First('庭') = %q", got)
	}
}

func TestLoadYAML(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantSize    int
		wantErr     bool
		errContains string
	}{
		{
			name: "valid yaml",
			content: `
entries:
  - character: "駅"
    readings: ["えき"]
  - character: "前"
    readings: ["ぜん", "まえ"]
`,
			wantSize: 2,
		},
		{
			name: "invalid yaml syntax",
			content: `
entries:
  - character: "駅
`,
			wantErr:     true,
			errContains: "parsing dictionary yaml",
		},
		{
			name: "duplicate",
			content: `
entries:
  - character: "駅"
    readings: ["えき"]
  - character: "駅"
    readings: ["うまや"]
`,
			wantErr:     true,
			errContains: "duplicate character found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := LoadYAML(strings.NewReader(tt.content))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Size() != tt.wantSize {
				t.Errorf("Size() = %d, want %d", d.Size(), tt.wantSize)
			}
		})
	}
}

const kanjidicSample = `<?xml version="1.0" encoding="UTF-8"?>
<kanjidic2>
<header><file_version>4</file_version></header>
<character>
<literal>話</literal>
<reading_meaning>
<rmgroup>
<reading r_type="pinyin">hua4</reading>
<reading r_type="ja_on">ワ</reading>
<reading r_type="ja_kun">はな.す</reading>
<reading r_type="ja_kun">はなし</reading>
<meaning>tale</meaning>
</rmgroup>
</reading_meaning>
</character>
<character>
<literal>込</literal>
<reading_meaning>
<rmgroup>
<reading r_type="ja_kun">-こ.む</reading>
<reading r_type="ja_kun">こ.む</reading>
</rmgroup>
</reading_meaning>
</character>
<character>
<literal>〇</literal>
</character>
</kanjidic2>`

func TestLoadKanjidic2(t *testing.T) {
	d, err := LoadKanjidic2(strings.NewReader(kanjidicSample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := d.Lookup('話'); !reflect.DeepEqual(got, []string{"わ", "はな", "はなし"}) {
		t.Errorf("Lookup('話') = %v", got)
	}
	if got, _ := d.Lookup('込'); !reflect.DeepEqual(got, []string{"こ"}) {
		t.Errorf("Lookup('込') = %v", got)
	}
	if _, ok := d.Lookup('〇'); ok {
		t.Error("character without readings should be skipped")
	}
}

func TestNormalizeReading(t *testing.T) {
	tests := map[string]string{
		"はな.す": "はな",
		"-こ.む":  "こ",
		"あざ-":   "あざ",
		"カン":    "かん",
		"じ":     "じ",
	}
	for in, want := range tests {
		if got := NormalizeReading(in); got != want {
			t.Errorf("NormalizeReading(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadFileByExtension(t *testing.T) {
	jsonPath := writeFile(t, "dict.json", `{"校":["こう"]}`)
	yamlPath := writeFile(t, "dict.yaml", "entries:\n  - character: 校\n    readings: [こう]\n")
	jsonlPath := writeFile(t, "dict.jsonl", `{"character":"校","readings":["こう"]}`)
	xmlPath := writeFile(t, "dict.xml", kanjidicSample)

	for _, path := range []string{jsonPath, yamlPath, jsonlPath} {
		d, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s): unexpected error: %v", filepath.Base(path), err)
		}
		if got, _ := d.First('校'); got != "こう" {
			t.Errorf("LoadFile(%s): First('校') = %q", filepath.Base(path), got)
		}
	}

	d, err := LoadFile(xmlPath)
	if err != nil {
		t.Fatalf("LoadFile(xml): unexpected error: %v", err)
	}
	if d.Size() != 2 {
		t.Errorf("LoadFile(xml): Size() = %d, want 2", d.Size())
	}

	if _, err := LoadFile(writeFile(t, "dict.txt", "")); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefault(t *testing.T) {
	d := Default()
	if d.Size() < 100 {
		t.Errorf("Default().Size() = %d, want at least 100", d.Size())
	}
	for _, r := range "校庭漢字駅人" {
		if _, ok := d.First(r); !ok {
			t.Errorf("Default() has no reading for %c", r)
		}
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.db")
	want := New(map[rune][]string{
		'字': {"じ", "あざ", "あざな"},
		'漢': {"かん"},
	})

	if err := SaveSQLite(path, want); err != nil {
		t.Fatalf("SaveSQLite: unexpected error: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.Entries(), want.Entries()) {
		t.Errorf("round trip = %v, want %v", got.Entries(), want.Entries())
	}
}

func TestBuild(t *testing.T) {
	src := `{
		"話": {"strokes": 13, "readings_on": ["わ"], "readings_kun": ["はな.す", "はなし"]},
		"字": {"readings_on": ["じ"], "readings_kun": ["あざ", "あざな", "あざ"]},
		"〆": {"readings_on": [], "readings_kun": []},
		"漢字": {"readings_on": ["かんじ"]}
	}`

	d, stats, err := Build(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Source != 4 || stats.Kept != 2 || stats.Skipped != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if got, _ := d.Lookup('字'); !reflect.DeepEqual(got, []string{"じ", "あざ", "あざな"}) {
		t.Errorf("Lookup('字') = %v", got)
	}
	if got, _ := d.Lookup('話'); !reflect.DeepEqual(got, []string{"わ", "はな", "はなし"}) {
		t.Errorf("Lookup('話') = %v", got)
	}
}

func TestSaveFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	d := New(map[rune][]string{'駅': {"えき"}})
	if err := SaveFile(path, d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"駅": [`) {
		t.Errorf("output not in expected format: %s", data)
	}
	if err := SaveFile(filepath.Join(t.TempDir(), "out.csv"), d); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
