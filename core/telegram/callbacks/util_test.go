package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name        string
		cb          *tele.Callback
		key, payload string
	}{
		{"nil", nil, "", ""},
		{"raw", &tele.Callback{Data: "category_3"}, "category_3", ""},
		{"raw with pipe", &tele.Callback{Data: "calendar-day-2024-3-5"}, "calendar-day-2024-3-5", ""},
		{"unique parsed", &tele.Callback{Unique: "menu", Data: "x"}, "menu", "x"},
		{"unique encoded", &tele.Callback{Data: "\fmenu|x|y"}, "menu", "x|y"},
		{"unique no payload", &tele.Callback{Data: "\fmenu"}, "menu", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			k, p := ParseCallbackData(tc.cb)
			if k != tc.key || p != tc.payload {
				t.Fatalf("got (%q, %q), want (%q, %q)", k, p, tc.key, tc.payload)
			}
		})
	}
}
