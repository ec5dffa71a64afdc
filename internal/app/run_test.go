package app

import (
	"bytes"
	"testing"
)

func TestRun_MissingEnv_ReturnsError(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BASE_URL", "")

	var buf bytes.Buffer
	err := Run(&buf, []string{"serve"})
	if err == nil {
		t.Fatal("expected error when required env vars are missing")
	}
}

func TestRun_Healthcheck_NoServerRunning_ReturnsError(t *testing.T) {
	// ポート1は使用できないためヘルスチェックは必ず失敗する
	t.Setenv("SERVER_PORT", "1")

	var buf bytes.Buffer
	err := Run(&buf, []string{"healthcheck"})
	if err == nil {
		t.Fatal("expected error when no server is listening")
	}
}
