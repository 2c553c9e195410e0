package i18n

import (
	"net/http/httptest"
	"testing"

	"golang.org/x/text/language"
)

func TestErrorText(t *testing.T) {
	if got := ErrorText(language.English, "invalid_machine"); got != "Invalid machine type." {
		t.Errorf("en invalid_machine: got %q", got)
	}
	if got := ErrorText(language.SimplifiedChinese, "empty_message"); got != "留言不能为空。" {
		t.Errorf("zh empty_message: got %q", got)
	}
	if got := ErrorText(language.English, "no_such_kind"); got != "An unknown error occurred." {
		t.Errorf("unknown kind should fall back to internal, got %q", got)
	}
}

func TestTextWithArgs(t *testing.T) {
	if got := Text(language.SimplifiedChinese, KeySelected, "翠林机"); got != "已选择：翠林机" {
		t.Errorf("got %q", got)
	}
}

func TestResolveTag(t *testing.T) {
	r := httptest.NewRequest("GET", "/?lang=zh", nil)
	if tag := ResolveTag(r); tag != language.SimplifiedChinese {
		t.Errorf("lang param: got %v", tag)
	}

	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	if tag := ResolveTag(r); tag != language.SimplifiedChinese {
		t.Errorf("accept-language: got %v", tag)
	}

	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Accept-Language", "en-GB")
	if tag := ResolveTag(r); tag != language.English {
		t.Errorf("en-GB: got %v", tag)
	}

	r = httptest.NewRequest("GET", "/?lang=!!", nil)
	if tag := ResolveTag(r); tag != language.English {
		t.Errorf("bad lang should fall back to default, got %v", tag)
	}

	if tag := ResolveTag(nil); tag != Default() {
		t.Errorf("nil request: got %v", tag)
	}
}

func TestStringsCoversEveryKey(t *testing.T) {
	en := Strings(language.English)
	zh := Strings(language.SimplifiedChinese)
	if len(en) != len(zh) {
		t.Fatalf("catalog sizes differ: en=%d zh=%d", len(en), len(zh))
	}
	for k := range en {
		if zh[k] == "" {
			t.Errorf("missing zh translation for %s", k)
		}
	}
}

func TestSupportedReturnsCopy(t *testing.T) {
	tags := Supported()
	if len(tags) != 2 || tags[0] != language.English || tags[1] != language.SimplifiedChinese {
		t.Fatalf("unexpected tags: %v", tags)
	}
	tags[0] = language.French
	if Supported()[0] != language.English {
		t.Error("Supported exposed its backing slice")
	}
}
