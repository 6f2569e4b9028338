package i18n

import (
	"regexp"
	"strings"
)

// Language represents the target language for translation
type Language string

const (
	LanguageEN Language = "en"
	LanguageCN Language = "cn"
)

// MessagePattern represents a compiled regex pattern with its Chinese translation template
type MessagePattern struct {
	Pattern     *regexp.Regexp
	Translation string
}

// Translator handles user-visible message translation
type Translator struct {
	patterns []MessagePattern
}

// NewTranslator creates a new translator with pre-compiled regex patterns
func NewTranslator() *Translator {
	patterns := []MessagePattern{
		// 1. 语法错误 (Syntax Errors)
		{
			Pattern:     regexp.MustCompile(`^syntax error$`),
			Translation: "语法错误",
		},
		{
			Pattern:     regexp.MustCompile(`^missing (.+?)$`),
			Translation: "缺少 $1",
		},

		// 2. 内联变量失败 (Inline Variable Failures)
		{
			Pattern:     regexp.MustCompile(`^Variable '(.+?)' is never used$`),
			Translation: "变量 '$1' 从未被使用",
		},
		{
			Pattern:     regexp.MustCompile(`^Cannot perform refactoring\. Variable '(.+?)' has no initializer$`),
			Translation: "无法执行重构。变量 '$1' 没有初始值",
		},
		{
			Pattern:     regexp.MustCompile(`^Cannot perform refactoring\. Variable '(.+?)' has no dominating definition$`),
			Translation: "无法执行重构。变量 '$1' 没有唯一的支配定义",
		},
		{
			Pattern:     regexp.MustCompile(`^Cannot inline variable '(.+?)' bound by a nested pattern$`),
			Translation: "无法内联由嵌套模式绑定的变量 '$1'",
		},
		{
			Pattern:     regexp.MustCompile(`^Cannot inline variable '(.+?)' with tuple-unpacking assignment$`),
			Translation: "无法内联由元组解构赋值的变量 '$1'",
		},
		{
			Pattern:     regexp.MustCompile(`^Cannot inline variable '(.+?)': tuple type does not match its initializer$`),
			Translation: "无法内联变量 '$1'：元组类型与其初始值不匹配",
		},
		{
			Pattern:     regexp.MustCompile(`^Cannot inline variable '(.+?)' defined by a compound or destructuring assignment$`),
			Translation: "无法内联由复合赋值或解构赋值定义的变量 '$1'",
		},
		{
			Pattern:     regexp.MustCompile(`^Cannot inline variable '(.+?)' assigned inside an expression$`),
			Translation: "无法内联在表达式内部赋值的变量 '$1'",
		},
		{
			Pattern:     regexp.MustCompile(`^Cannot inline an assignment to variable '(.+?)'$`),
			Translation: "无法内联对变量 '$1' 的赋值",
		},

		// 3. 重构操作标题 (Refactoring Titles)
		{
			Pattern:     regexp.MustCompile(`^Inline variable '(.+?)' \((\d+) occurrences?\)$`),
			Translation: "内联变量 '$1' ($2 处引用)",
		},
		{
			Pattern:     regexp.MustCompile(`^Inline this occurrence of variable '(.+?)'$`),
			Translation: "仅内联变量 '$1' 的此处引用",
		},
		{
			Pattern:     regexp.MustCompile(`^Inline variable '(.+?)' and keep the declaration$`),
			Translation: "内联变量 '$1' 并保留声明",
		},
		{
			Pattern:     regexp.MustCompile(`^Inline variable$`),
			Translation: "内联变量",
		},
	}

	return &Translator{patterns: patterns}
}

// Translate translates a message to the specified language
func (t *Translator) Translate(msg string, lang Language) string {
	if lang == LanguageCN {
		return t.translateToChinese(msg)
	}
	return msg
}

// translateToChinese attempts to translate an English message to Chinese
func (t *Translator) translateToChinese(msg string) string {
	cleanMsg := strings.TrimSpace(msg)
	for _, pattern := range t.patterns {
		if pattern.Pattern.MatchString(cleanMsg) {
			return pattern.Pattern.ReplaceAllString(cleanMsg, pattern.Translation)
		}
	}

	// If no pattern matches, return the original message
	return msg
}

// GetSupportedLanguages returns a list of supported languages
func (t *Translator) GetSupportedLanguages() []Language {
	return []Language{LanguageEN, LanguageCN}
}

// LanguageFromLocale returns the language for a client locale such as
// "zh-CN" or "en-US". Unknown locales fall back to English.
func LanguageFromLocale(locale string) Language {
	locale = strings.ToLower(locale)
	if strings.HasPrefix(locale, "zh") || strings.HasPrefix(locale, "cn") {
		return LanguageCN
	}
	return LanguageEN
}

// Global translator instance
var defaultTranslator = NewTranslator()

// Translate is a convenience function that uses the default translator
func Translate(msg string, lang Language) string {
	return defaultTranslator.Translate(msg, lang)
}
