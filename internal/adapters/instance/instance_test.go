package instance_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/staffing/internal/adapters/instance"
	"github.com/okian/staffing/internal/domain/model"
	"github.com/okian/staffing/internal/domain/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleText = `3 3
Anna 1
C++ 2
Bob 2
HTML 5
CSS 5
Maria 1
Python 3
Logging 5 10 5 1
C++ 3
WebServer 7 10 7 2
HTML 3
C++ 2
WebChat 10 20 20 2
Python 3
HTML 3
`

const exampleJSON = `{
  "contributors": [
    {"name": "Anna", "skills": {"C++": 2}},
    {"name": "Bob", "skills": {"HTML": 5, "CSS": 5}},
    {"name": "Maria", "skills": {"Python": 3}}
  ],
  "projects": [
    {"name": "Logging", "duration": 5, "score": 10, "best_before": 5, "roles": [{"skill": "C++", "level": 3}]},
    {"name": "WebServer", "duration": 7, "score": 10, "best_before": 7, "roles": [{"skill": "HTML", "level": 3}, {"skill": "C++", "level": 2}]},
    {"name": "WebChat", "duration": 10, "score": 20, "best_before": 20, "roles": [{"skill": "Python", "level": 3}, {"skill": "HTML", "level": 3}]}
  ]
}`

func assertExample(t *testing.T, in *model.Instance) {
	t.Helper()
	require.Len(t, in.Contributors, 3)
	require.Len(t, in.Projects, 3)
	assert.Equal(t, "Bob", in.Contributors[1].Name)
	assert.Equal(t, map[string]int{"HTML": 5, "CSS": 5}, in.Contributors[1].Skills)
	assert.Equal(t, model.Project{
		Name: "WebServer", Duration: 7, Score: 10, BestBefore: 7,
		Roles: []model.Role{{Skill: "HTML", Level: 3}, {Skill: "C++", Level: 2}},
	}, in.Projects[1])
}

func TestReadText(t *testing.T) {
	in, err := instance.ReadText(strings.NewReader(exampleText))
	require.NoError(t, err)
	assertExample(t, in)
}

func TestReadText_Malformed(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad header", "1\n"},
		{"non numeric count", "x 1\n"},
		{"truncated", "1 0\nAnna 2\nC++ 2\n"},
		{"level too high", "1 0\nAnna 1\nC++ 21\n"},
		{"negative level", "1 0\nAnna 1\nC++ -1\n"},
		{"short project line", "0 1\nP 1 2 3\n"},
		{"huge contributor count", "9223372036854775807 1\n"},
		{"huge project count", "0 9223372036854775807\n"},
		{"huge skill count", "1 0\nAnna 9223372036854775807\n"},
		{"huge role count", "0 1\nP 1 1 1 9223372036854775807\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := instance.ReadText(strings.NewReader(tc.input))
			assert.ErrorIs(t, err, instance.ErrMalformedInput)
		})
	}
}

func TestReadText_InvalidInstance(t *testing.T) {
	_, err := instance.ReadText(strings.NewReader("2 0\nAnna 0\nAnna 0\n"))
	assert.ErrorIs(t, err, model.ErrInvalidInstance)
	assert.ErrorIs(t, err, instance.ErrMalformedInput)
}

func TestReadPlan_HugeCount(t *testing.T) {
	_, err := instance.ReadPlan(strings.NewReader("9223372036854775807\n"))
	assert.ErrorIs(t, err, instance.ErrMalformedInput)
}

func TestReadJSON(t *testing.T) {
	in, err := instance.ReadJSON([]byte(exampleJSON))
	require.NoError(t, err)
	assertExample(t, in)
}

func TestReadJSON_Errors(t *testing.T) {
	_, err := instance.ReadJSON([]byte(`{"contributors": [`))
	assert.ErrorIs(t, err, instance.ErrMalformedInput)

	_, err = instance.ReadJSON([]byte(`{"contributors": []}`))
	assert.ErrorIs(t, err, instance.ErrSchemaViolation)

	_, err = instance.ReadJSON([]byte(`{"contributors": [{"name": "A", "skills": {"X": 25}}], "projects": []}`))
	assert.ErrorIs(t, err, instance.ErrSchemaViolation)

	_, err = instance.ReadJSON([]byte(`{"contributors": [], "projects": [{"name": "P", "duration": 1, "score": 1, "best_before": 1, "roles": []}]}`))
	assert.ErrorIs(t, err, instance.ErrSchemaViolation)

	_, err = instance.ReadJSON([]byte(`{"contributors": [{"name": "A", "skills": {}}, {"name": "A", "skills": {}}], "projects": []}`))
	assert.ErrorIs(t, err, model.ErrInvalidInstance)
	assert.ErrorIs(t, err, instance.ErrMalformedInput)
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		path, format, want string
	}{
		{"a.txt", instance.FormatAuto, instance.FormatText},
		{"a.json", instance.FormatAuto, instance.FormatJSON},
		{"a.JSON.zst", "", instance.FormatJSON},
		{"a.in.zst", instance.FormatAuto, instance.FormatText},
		{"a.json", instance.FormatText, instance.FormatText},
	}
	for _, tc := range cases {
		got, err := instance.DetectFormat(tc.path, tc.format)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.path)
	}

	_, err := instance.DetectFormat("a.txt", "xml")
	assert.ErrorIs(t, err, instance.ErrUnsupportedFormat)
}

func TestPlanText(t *testing.T) {
	plan := []model.NamedAllocation{
		{Project: "WebServer", Contributors: []string{"Bob", "Anna"}},
		{Project: "Logging", Contributors: []string{"Anna"}},
	}
	var buf bytes.Buffer
	require.NoError(t, instance.WriteText(&buf, plan))
	assert.Equal(t, "2\nWebServer\nBob Anna\nLogging\nAnna\n", buf.String())

	got, err := instance.ReadPlan(&buf)
	require.NoError(t, err)
	assert.Equal(t, plan, got)
}

func TestWriteInstance(t *testing.T) {
	in, err := instance.ReadText(strings.NewReader(exampleText))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, instance.WriteInstance(&buf, in))

	back, err := instance.ReadText(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, back)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, instance.WriteJSON(&buf, types.PlanResponse{
		RunID: "r", Score: 20,
		Allocations: []types.PlanEntry{{Project: "WebChat", Contributors: []string{"Maria", "Bob"}}},
	}))
	assert.Contains(t, buf.String(), `"project": "WebChat"`)
	assert.Contains(t, buf.String(), `"score": 20`)
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()

	t.Run("compressed plan round trip", func(t *testing.T) {
		path := filepath.Join(dir, "plan.out.zst")
		w, err := instance.Create(path)
		require.NoError(t, err)
		plan := []model.NamedAllocation{{Project: "WebChat", Contributors: []string{"Maria", "Bob"}}}
		require.NoError(t, instance.WriteText(w, plan))
		require.NoError(t, w.Close())

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.False(t, bytes.HasPrefix(raw, []byte("1\n")))

		r, err := instance.OpenReader(path)
		require.NoError(t, err)
		defer r.Close()
		got, err := instance.ReadPlan(r)
		require.NoError(t, err)
		assert.Equal(t, plan, got)
	})

	t.Run("compressed json instance", func(t *testing.T) {
		path := filepath.Join(dir, "example.json.zst")
		w, err := instance.Create(path)
		require.NoError(t, err)
		_, err = w.Write([]byte(exampleJSON))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		in, err := instance.Open(path, instance.FormatAuto)
		require.NoError(t, err)
		assertExample(t, in)
	})

	t.Run("plain text instance", func(t *testing.T) {
		path := filepath.Join(dir, "example.in")
		require.NoError(t, os.WriteFile(path, []byte(exampleText), 0o600))
		in, err := instance.Open(path, instance.FormatAuto)
		require.NoError(t, err)
		assertExample(t, in)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := instance.Open(filepath.Join(dir, "nope.in"), instance.FormatAuto)
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}
