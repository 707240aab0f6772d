//go:build integration
// +build integration

package integration

import (
	"context"
	"os/exec"
	"testing"
)

func restartProductContainer(t *testing.T, ctx context.Context) {
	t.Helper()

	container := getenv("E2E_PRODUCT_CONTAINER", "product")
	cmd := exec.CommandContext(ctx, "docker", "restart", container)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("docker restart %s failed: %v\n%s", container, err, string(out))
	}
}
