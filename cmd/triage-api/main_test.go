package main

import (
	"bytes"
	"strings"
	"testing"

	"backend-triage/internal/auth"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("ENV_FILE", "")

	var out bytes.Buffer
	root := newRootCommand(viper.New())
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--subject", "nurse-1", "--roles", "nurse,admin"})
	require.NoError(t, root.Execute())

	id, err := auth.NewVerifier("cli-secret").Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{Subject: "nurse-1", Roles: []string{"nurse", "admin"}}, id)
}

func TestTokenCommand_RequiresSubject(t *testing.T) {
	root := newRootCommand(viper.New())
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"token"})
	assert.Error(t, root.Execute())
}

func TestMigrateCommand_SQLite(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:"+t.TempDir()+"/triage.db")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("ENV_FILE", "")

	root := newRootCommand(viper.New())
	root.SetArgs([]string{"migrate"})
	assert.NoError(t, root.Execute())
}
