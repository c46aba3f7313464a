package botenv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetString_FallsBackToDefault(t *testing.T) {
	os.Unsetenv("BOTENV_TEST_STR")
	if got := GetString("BOTENV_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("GetString = %q, want fallback", got)
	}
	os.Setenv("BOTENV_TEST_STR", "set")
	defer os.Unsetenv("BOTENV_TEST_STR")
	if got := GetString("BOTENV_TEST_STR", "fallback"); got != "set" {
		t.Errorf("GetString = %q, want set", got)
	}
}

func TestGetFloat_UnparsableFallsBackToDefault(t *testing.T) {
	os.Setenv("BOTENV_TEST_FLOAT", "not-a-number")
	defer os.Unsetenv("BOTENV_TEST_FLOAT")
	if got := GetFloat("BOTENV_TEST_FLOAT", 2.5); got != 2.5 {
		t.Errorf("GetFloat = %v, want 2.5", got)
	}
}

func TestGetBool_RecognizesYesNoVariants(t *testing.T) {
	cases := map[string]bool{"1": true, "true": true, "yes": true, "0": false, "false": false, "no": false}
	for in, want := range cases {
		os.Setenv("BOTENV_TEST_BOOL", in)
		if got := GetBool("BOTENV_TEST_BOOL", !want); got != want {
			t.Errorf("GetBool(%q) = %v, want %v", in, got, want)
		}
	}
	os.Unsetenv("BOTENV_TEST_BOOL")
}

func TestLoadDotEnv_OnlyInjectsNeededKeysAndNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	content := "# comment\nexport NEEDED_KEY=from_file\nSECRET_KEY=ignore_me\nQUOTED=\"has space\"\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	os.Unsetenv("NEEDED_KEY")
	os.Unsetenv("SECRET_KEY")
	os.Unsetenv("QUOTED")
	os.Setenv("ALREADY_SET", "do_not_overwrite")
	defer func() {
		os.Unsetenv("NEEDED_KEY")
		os.Unsetenv("QUOTED")
		os.Unsetenv("ALREADY_SET")
	}()

	LoadDotEnv([]string{dir}, map[string]struct{}{
		"NEEDED_KEY":  {},
		"QUOTED":      {},
		"ALREADY_SET": {},
	})

	if got := os.Getenv("NEEDED_KEY"); got != "from_file" {
		t.Errorf("NEEDED_KEY = %q, want from_file", got)
	}
	if got := os.Getenv("SECRET_KEY"); got != "" {
		t.Errorf("SECRET_KEY should not be injected, got %q", got)
	}
	if got := os.Getenv("QUOTED"); got != "has space" {
		t.Errorf("QUOTED = %q, want unquoted value", got)
	}
	if got := os.Getenv("ALREADY_SET"); got != "do_not_overwrite" {
		t.Errorf("ALREADY_SET was overwritten: %q", got)
	}
}
