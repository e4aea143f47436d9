package notify

import "testing"

var twitterVars = []string{
	"TWITTER_API_KEY",
	"TWITTER_API_SECRET",
	"TWITTER_ACCESS_TOKEN",
	"TWITTER_ACCESS_SECRET",
}

func TestNewTwitter(t *testing.T) {
	t.Run("builds with full credentials", func(t *testing.T) {
		for _, v := range twitterVars {
			t.Setenv(v, "value")
		}
		tw, err := NewTwitter()
		if err != nil {
			t.Fatalf("constructor error: %v", err)
		}
		if tw == nil {
			t.Fatal("notifier is nil")
		}
	})

	t.Run("any missing credential fails", func(t *testing.T) {
		for _, missing := range twitterVars {
			t.Run(missing, func(t *testing.T) {
				for _, v := range twitterVars {
					if v == missing {
						t.Setenv(v, "")
					} else {
						t.Setenv(v, "value")
					}
				}
				if _, err := NewTwitter(); err == nil {
					t.Error("expected an error for missing credentials")
				}
			})
		}
	})
}
