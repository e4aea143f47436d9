package challenge

import (
	"errors"
	"testing"
)

func TestSolve(t *testing.T) {
	t.Run("extracts token from cookie assignment", func(t *testing.T) {
		script := `
			(function() {
				var expiry = ";path=/;max-age=600";
				document.cookie = "octofence_jslc=" + "7f3b19c2d4e5a6b7" + expiry;
			})();
		`
		cred, err := Solve(script)
		if err != nil {
			t.Fatalf("solve error: %v", err)
		}
		if got := cred.Values[CookieToken]; got != "7f3b19c2d4e5a6b7" {
			t.Errorf("token = %q, want %q", got, "7f3b19c2d4e5a6b7")
		}
		if cred.Values[CookieFingerprint] == "" {
			t.Error("fingerprint is empty")
		}
		if !cred.Valid() {
			t.Error("credential should be valid")
		}
	})

	t.Run("handles attributes inside one literal", func(t *testing.T) {
		script := `document.cookie = "octofence_jslc=abc123; path=/";`
		cred, err := Solve(script)
		if err != nil {
			t.Fatalf("solve error: %v", err)
		}
		if got := cred.Values[CookieToken]; got != "abc123" {
			t.Errorf("token = %q, want %q", got, "abc123")
		}
	})

	t.Run("finds assignment nested in real challenge shapes", func(t *testing.T) {
		// Obfuscated challenges bury the assignment under several layers
		// of control flow and callbacks; the descent must reach all of
		// them.
		scripts := map[string]string{
			"if branch": `
				(function() {
					if (navigator.webdriver) {
						document.cookie = "decoy=1";
					} else {
						document.cookie = "octofence_jslc=" + "deadbeef" + ";path=/";
					}
				})();
			`,
			"callback argument": `
				setTimeout(function() {
					document.cookie = "octofence_jslc=" + "deadbeef";
				}, 100);
			`,
			"var-bound arrow": `
				var apply = () => { document.cookie = "octofence_jslc=" + "deadbeef"; };
				apply();
			`,
			"try block": `
				try {
					document.cookie = "octofence_jslc=" + "deadbeef" + ";secure";
				} catch (e) {}
			`,
			"for loop body": `
				for (var i = 0; i < 1; i++) {
					document.cookie = "octofence_jslc=" + "deadbeef";
				}
			`,
		}
		for name, script := range scripts {
			t.Run(name, func(t *testing.T) {
				cred, err := Solve(script)
				if err != nil {
					t.Fatalf("solve error: %v", err)
				}
				if got := cred.Values[CookieToken]; got != "deadbeef" {
					t.Errorf("token = %q, want %q", got, "deadbeef")
				}
			})
		}
	})

	t.Run("invalid syntax is a parse error", func(t *testing.T) {
		_, err := Solve(`function { nope`)
		if !errors.Is(err, ErrParse) {
			t.Fatalf("expected ErrParse, got %v", err)
		}
	})

	t.Run("missing assignment is a pattern error", func(t *testing.T) {
		_, err := Solve(`var a = 1; var b = a + 2; console.log(b);`)
		if !errors.Is(err, ErrPattern) {
			t.Fatalf("expected ErrPattern, got %v", err)
		}
	})

	t.Run("wrong cookie name is a pattern error", func(t *testing.T) {
		_, err := Solve(`document.cookie = "session=abc123";`)
		if !errors.Is(err, ErrPattern) {
			t.Fatalf("expected ErrPattern, got %v", err)
		}
	})
}

func TestFingerprint(t *testing.T) {
	a, b := Fingerprint(), Fingerprint()
	if a == "" {
		t.Fatal("fingerprint is empty")
	}
	if a != b {
		t.Errorf("fingerprint not deterministic: %q vs %q", a, b)
	}
}
