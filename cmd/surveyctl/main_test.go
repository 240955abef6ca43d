package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitasurvey/internal/service"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath = ""
	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestValidate_StockTree(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join("..", "..", "seed", "health_survey.yaml"))

	require.NoError(t, err)
	assert.Contains(t, out, "categories")
	assert.NotContains(t, out, "warning:")
}

func TestValidate_ReportsDisabledRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - id: 1
    name: Basics
    order: 1
    subCategories:
      - id: 10
        name: About you
        questions:
          - id: 1
            text: Age
            type: TEXT
`), 0o600))

	out, err := execute(t, "validate", path)

	require.NoError(t, err)
	assert.Contains(t, out, "1 categories, 1 subcategories, 1 questions")
	assert.Contains(t, out, "gender rule disabled")
	assert.Contains(t, out, "symptom rule disabled")
}

func TestValidate_MalformedTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - id: 1\n    colour: red\n"), 0o600))

	_, err := execute(t, "validate", path)

	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := execute(t, "token", "m-9", "--ttl", "1h")
	require.NoError(t, err)

	var resp struct {
		Token    string `json:"token"`
		MemberID string `json:"memberId"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "m-9", resp.MemberID)

	claims, err := service.NewAuthService("cli-secret").ValidateMemberToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "m-9", claims.MemberID)
}
