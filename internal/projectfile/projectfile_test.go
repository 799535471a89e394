package projectfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/miniplan/internal/project"
	"github.com/aristath/miniplan/internal/scheduler"
)

func scheduledSample(t *testing.T) []*scheduler.Activity {
	t.Helper()
	p := project.Sample()
	sum, err := p.Schedule(scheduler.New())
	require.NoError(t, err)

	acts := sum.Activities
	acts[1].Resource = "crew, concrete"
	acts[1].Description = "pour \"slab\""
	return acts
}

func TestRoundTripAllFormats(t *testing.T) {
	want := scheduledSample(t)

	for _, f := range Formats() {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, f, want))

			got, err := Decode(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestRoundTripUnscheduled(t *testing.T) {
	want := project.SampleActivities()

	for _, f := range Formats() {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, f, want))

			got, err := Decode(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeHandWritten(t *testing.T) {
	tests := []struct {
		format Format
		src    string
	}{
		{JSON, `{"activities": [
			{"id": " A ", "name": "Start", "duration": 2, "predecessors": []},
			{"id": "B", "name": "Foundation", "duration": 4, "predecessors": ["A", "A", " "]}
		]}`},
		{YAML, `
activities:
  - id: A
    name: Start
    duration: 2
    predecessors: []
  - id: B
    name: Foundation
    duration: 4
    predecessors: [A, A]
`},
		{TOML, `
[[activities]]
id = "A"
name = "Start"
duration = 2
predecessors = []

[[activities]]
id = "B"
name = "Foundation"
duration = 4
predecessors = ["A", "A"]
`},
		{HCL, `
activity "A" {
  name     = "Start"
  duration = 2
}

activity "B" {
  name         = "Foundation"
  duration     = 4
  predecessors = ["A", "A"]
}
`},
		{CSV, "ID,Name,Duration,Predecessors\nA,Start,2,\nB,Foundation,4,\"A, A\"\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			acts, err := Decode(strings.NewReader(tt.src), tt.format)
			require.NoError(t, err)
			require.Len(t, acts, 2)

			assert.Equal(t, "A", acts[0].ID)
			assert.Equal(t, []string{}, acts[0].Predecessors)
			assert.Equal(t, "B", acts[1].ID)
			assert.Equal(t, 4, acts[1].Duration)
			assert.Equal(t, []string{"A"}, acts[1].Predecessors, "duplicates collapse")
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		src     string
		wantErr string
	}{
		{"json unknown field", JSON, `{"activities": [{"id": "A", "name": "a", "duration": 1, "colour": "red"}]}`, "colour"},
		{"yaml unknown field", YAML, "activities:\n  - id: A\n    name: a\n    duration: 1\n    colour: red\n", "colour"},
		{"toml unknown field", TOML, "[[activities]]\nid = \"A\"\nname = \"a\"\nduration = 1\ncolour = \"red\"\n", "decoding toml"},
		{"hcl missing name", HCL, "activity \"A\" {\n  duration = 1\n}\n", "name"},
		{"csv missing column", CSV, "id,name\nA,a\n", `missing "duration" column`},
		{"csv bad number", CSV, "id,name,duration\nA,a,two\n", "line 2: duration must be an integer"},
		{"negative duration", JSON, `{"activities": [{"id": "A", "name": "a", "duration": -1}]}`, "duration must be non-negative"},
		{"blank name", YAML, "activities:\n  - id: A\n    name: '  '\n    duration: 1\n", "name must be a non-empty string"},
		{"self reference", CSV, "id,name,duration,predecessors\nA,a,1,A\n", "lists itself as a predecessor"},
		{"duplicate id", JSON, `{"activities": [{"id": "A", "name": "a", "duration": 1}, {"id": "A", "name": "b", "duration": 2}]}`, "activities 1 and 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src), tt.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, f := range Formats() {
		t.Run(string(f), func(t *testing.T) {
			acts, err := Decode(strings.NewReader(""), f)
			require.NoError(t, err)
			assert.Empty(t, acts)
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"json", JSON, true},
		{".YAML", YAML, true},
		{"yml", YAML, true},
		{"toml", TOML, true},
		{".hcl", HCL, true},
		{"CSV", CSV, true},
		{"xlsx", "", false},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if !tt.ok {
			assert.ErrorIs(t, err, ErrUnknownFormat, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := FormatFromPath("plan")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriteAndReadFile(t *testing.T) {
	want := scheduledSample(t)
	dir := t.TempDir()

	for _, name := range []string{"plan.json", "nested/plan.yml", "plan.toml", "plan.hcl", "plan.csv"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, want))

			got, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := ReadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = WriteFile(filepath.Join(dir, "plan.xlsx"), want)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestEncodeHCLLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, HCL, project.SampleActivities()[:2]))

	out := buf.String()
	assert.Contains(t, out, `activity "A" {`)
	assert.Contains(t, out, `predecessors = []`)
	assert.Contains(t, out, `predecessors = ["A"]`)
	assert.NotContains(t, out, "total_float", "unscheduled activities carry no dates")
}
