package cmd

import (
	"testing"
)

func flagValue(args []string, name string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == name {
			return args[i+1]
		}
	}
	return ""
}

func TestDevCmd_Defaults(t *testing.T) {
	cmd := DevCmd()

	tests := map[string]string{
		"port":         "8080",
		"app-port":     "8090",
		"skip-migrate": "false",
	}
	for name, want := range tests {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			t.Errorf("flag --%s missing", name)
			continue
		}
		if f.DefValue != want {
			t.Errorf("--%s default = %q, want %q", name, f.DefValue, want)
		}
	}
}

func TestAirArgs(t *testing.T) {
	args := airArgs(devOptions{port: 3000, appPort: 3001})

	if args[0] != "air" {
		t.Errorf("argv[0] = %q, want air", args[0])
	}
	tests := map[string]string{
		"-build.cmd":         "go build -o ./tmp/main ./cmd/server",
		"-build.include_ext": "go,sql",
		"-proxy.proxy_port":  "3000",
		"-proxy.app_port":    "3001",
	}
	for name, want := range tests {
		if got := flagValue(args, name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}
