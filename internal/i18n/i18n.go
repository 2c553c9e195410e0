// Package i18n holds the user-facing strings of the wish form and the
// evaluator's error responses, in English and Simplified Chinese.
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LangParam is the query parameter used to select a language.
const LangParam = "lang"

// Message keys. Error keys are "error." followed by a fortune error kind.
const (
	KeyInvalidMachine   = "error.invalid_machine"
	KeyEmptyMessage     = "error.empty_message"
	KeyConfiguration    = "error.configuration"
	KeyInvalidInput     = "error.invalid_input"
	KeyRemote           = "error.remote"
	KeyNetwork          = "error.network"
	KeyInternal         = "error.internal"
	KeyBadRequest       = "error.bad_request"
	KeyMethodNotAllowed = "error.method_not_allowed"

	KeySelectMachine = "status.select_machine"
	KeyWriteMessage  = "status.write_message"
	KeyRolling       = "status.rolling"
	KeyDone          = "status.done"
	KeySelected      = "status.selected"

	KeyChooseMachine = "cli.choose_machine"
	KeyEnterNumber   = "cli.enter_number"
	KeyInvalidChoice = "cli.invalid_choice"
	KeyEnterWish     = "cli.enter_wish"
	KeyResultHeader  = "cli.result_header"
	KeyResultScene   = "cli.result_scene"
	KeyResultFood    = "cli.result_food"
	KeyResultMiss    = "cli.result_miss"
)

var supportedTags = []language.Tag{
	language.English,
	language.SimplifiedChinese,
}

var tagMatcher = language.NewMatcher(supportedTags)

var messages = map[language.Tag]map[string]string{
	language.English: {
		KeyInvalidMachine:   "Invalid machine type.",
		KeyEmptyMessage:     "The message must not be empty.",
		KeyConfiguration:    "No eligible scenes, please check the configuration.",
		KeyInvalidInput:     "The configuration is missing usable options.",
		KeyRemote:           "The remote evaluator returned an error.",
		KeyNetwork:          "Network error, please try again later.",
		KeyInternal:         "An unknown error occurred.",
		KeyBadRequest:       "Malformed request.",
		KeyMethodNotAllowed: "Method not allowed.",
		KeySelectMachine:    "Please choose a machine first.",
		KeyWriteMessage:     "Please write a message, even a few words will do.",
		KeyRolling:          "Rolling the dice…",
		KeyDone:             "Done!",
		KeySelected:         "Selected: %s",
		KeyChooseMachine:    "Choose a machine:",
		KeyEnterNumber:      "Machine number: ",
		KeyInvalidChoice:    "Invalid input, enter a number between 1 and %d.",
		KeyEnterWish:        "Write anything to seed the draw: ",
		KeyResultHeader:     "=== Result ===",
		KeyResultScene:      "Scene: %s",
		KeyResultFood:       "Food: %s",
		KeyResultMiss:       "Miss bucket: %s",
	},
	language.SimplifiedChinese: {
		KeyInvalidMachine:   "机型选择无效。",
		KeyEmptyMessage:     "留言不能为空。",
		KeyConfiguration:    "没有可用的场景，请检查配置。",
		KeyInvalidInput:     "配置缺少可用选项。",
		KeyRemote:           "远程服务返回了错误。",
		KeyNetwork:          "网络错误，请稍后重试。",
		KeyInternal:         "出现未知错误",
		KeyBadRequest:       "请求格式无效。",
		KeyMethodNotAllowed: "不支持的请求方法。",
		KeySelectMachine:    "请先选择机型。",
		KeyWriteMessage:     "请填写一段留言，哪怕几个字也好。",
		KeyRolling:          "正在掷骰子…",
		KeyDone:             "已完成！",
		KeySelected:         "已选择：%s",
		KeyChooseMachine:    "请选择机型：",
		KeyEnterNumber:      "输入机型编号：",
		KeyInvalidChoice:    "无效输入，请重新输入 1-%d 之间的数字。",
		KeyEnterWish:        "请输入任意内容以生成随机种子：",
		KeyResultHeader:     "=== 随机结果 ===",
		KeyResultScene:      "场景：%s",
		KeyResultFood:       "食物：%s",
		KeyResultMiss:       "miss 档位：%s",
	},
}

func init() {
	for tag, msgs := range messages {
		for key, msg := range msgs {
			if err := message.SetString(tag, key, msg); err != nil {
				panic("i18n: register " + key + ": " + err.Error())
			}
		}
	}
}

// Default returns the default language tag.
func Default() language.Tag {
	return language.English
}

// Supported returns the supported language tags.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// Text returns the message for key in tag's language.
func Text(tag language.Tag, key string, args ...interface{}) string {
	return Printer(tag).Sprintf(key, args...)
}

// ErrorText returns the user-facing message for a fortune error kind.
func ErrorText(tag language.Tag, kind string) string {
	key := "error." + kind
	if _, ok := messages[language.English][key]; !ok {
		key = KeyInternal
	}
	return Text(tag, key)
}

// Strings returns every message for tag keyed by message key.
func Strings(tag language.Tag) map[string]string {
	src, ok := messages[tag]
	if !ok {
		src = messages[Default()]
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// ResolveTag picks the response language from the lang query parameter,
// then Accept-Language, then the default.
func ResolveTag(r *http.Request) language.Tag {
	if r == nil {
		return Default()
	}
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		if tag, ok := Match(v); ok {
			return tag
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, conf := tagMatcher.Match(tags...)
			if conf != language.No {
				return supportedTags[idx]
			}
		}
	}
	return Default()
}

// Match maps a language string onto a supported tag.
func Match(value string) (language.Tag, bool) {
	parsed, err := language.Parse(value)
	if err != nil {
		return language.Tag{}, false
	}
	_, idx, conf := tagMatcher.Match(parsed)
	if conf == language.No {
		return language.Tag{}, false
	}
	return supportedTags[idx], true
}
