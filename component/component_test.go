package component

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	t.Run("ServiceUnit", func(t *testing.T) {
		out, err := Render(ServiceUnit, struct {
			User         string
			LaunchScript string
			LogDir       string
		}{User: "sol", LaunchScript: "/home/sol/bin/validator.sh", LogDir: "/home/sol/log"})
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{
			"User=sol",
			"ExecStart=/home/sol/bin/validator.sh",
			"StandardOutput=append:/home/sol/log/validator-stdout.log",
			"Restart=always",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("rendered unit missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("UnknownTemplate", func(t *testing.T) {
		if _, err := Render("nope.tmpl", nil); err == nil {
			t.Error("unknown template must fail")
		}
	})

	t.Run("MissingField", func(t *testing.T) {
		if _, err := Render(ServiceUnit, struct{ User string }{User: "sol"}); err == nil {
			t.Error("missing template data must fail, not render empty")
		}
	})
}
