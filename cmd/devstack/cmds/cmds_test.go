package cmds

import (
	"reflect"
	"testing"
)

func TestParseRedirects(t *testing.T) {
	testCases := []struct {
		in     []string
		tgt    map[string][3]string
		tgterr string
	}{
		{
			[]string{"api:one.txt"},
			map[string][3]string{"api": {"one.txt", "", ""}},
			"",
		},
		{
			[]string{"api:one.txt", "api:two.txt"},
			nil,
			"redirect error: stdin of api redirected twice",
		},
		{
			[]string{"api:stdout:one.txt"},
			map[string][3]string{"api": {"", "one.txt", ""}},
			"",
		},
		{
			[]string{"api:stdout:one.txt", "api:stderr:two.txt", "api:three.txt", "ui:stdout:ui.log"},
			map[string][3]string{
				"api": {"three.txt", "one.txt", "two.txt"},
				"ui":  {"", "ui.log", ""},
			},
			"",
		},
		{
			[]string{"one.txt"},
			nil,
			`redirect error: "one.txt" does not name a child (api or ui)`,
		},
		{
			[]string{"ui:stdout:"},
			nil,
			"redirect error: empty stdout path for ui",
		},
	}

	for _, tc := range testCases {
		t.Logf("input: %q", tc.in)
		out, err := parseRedirects(tc.in)
		t.Logf("output: %q error %v", out, err)
		if tc.tgterr != "" {
			if err == nil {
				t.Errorf("Expected error %q, got output %q", tc.tgterr, out)
			} else if errstr := err.Error(); errstr != tc.tgterr {
				t.Errorf("Expected error %q, got error %q", tc.tgterr, errstr)
			}
		} else {
			if err != nil {
				t.Errorf("Unexpected error %v", err)
			} else if !reflect.DeepEqual(out, tc.tgt) {
				t.Errorf("Expected %q, got %q", tc.tgt, out)
			}
		}
	}
}
