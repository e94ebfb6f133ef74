package service

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"couplet_studio_202602/internal/api/dto"
)

// ==================== 常量 ====================

const (
	maxThemeLength = 50
	maxTabooWords  = 20

	defaultStyle    = "喜庆"
	defaultIndustry = "通用"
	defaultTone     = "吉祥"
)

var (
	tabooSeparator = regexp.MustCompile(`[，,、]`)
	fencedBlock    = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")
)

// ==================== 解析结果 ====================

// ParseResult 校验/解析结果：OK 为 true 时 Data 有效，否则 Error 给出原因
type ParseResult[T any] struct {
	OK    bool
	Data  T
	Error string
}

func parseOK[T any](data T) ParseResult[T] {
	return ParseResult[T]{OK: true, Data: data}
}

func parseFail[T any](reason string) ParseResult[T] {
	return ParseResult[T]{Error: reason}
}

// ==================== 工具函数 ====================

func trimText(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// asTrimmedString 仅接受字符串，其余类型视为空
func asTrimmedString(value any) string {
	if s, ok := value.(string); ok {
		return trimText(s)
	}
	return ""
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// normalizeTabooWords 列表：逐项去空白、丢弃空项、最多 20 个（结果可能为空列表）
// 字符串：按中英文逗号与顿号切分，规则同上，结果为空时视为未提供
func normalizeTabooWords(value any) []string {
	switch v := value.(type) {
	case []any:
		words := make([]string, 0, len(v))
		for _, item := range v {
			if word := asTrimmedString(item); word != "" {
				words = append(words, word)
			}
			if len(words) == maxTabooWords {
				break
			}
		}
		return words
	case string:
		var words []string
		for _, piece := range tabooSeparator.Split(v, -1) {
			if word := trimText(piece); word != "" {
				words = append(words, word)
			}
			if len(words) == maxTabooWords {
				break
			}
		}
		if len(words) == 0 {
			return nil
		}
		return words
	default:
		return nil
	}
}

// ==================== 请求校验 ====================

// ParseGenerateRequest 校验并规范化春联生成请求
// payload 为 json.Unmarshal 到 any 的结果，请求体不是合法 JSON 时传 nil
func ParseGenerateRequest(payload any) ParseResult[dto.GenerateCoupletReq] {
	body, ok := payload.(map[string]any)
	if !ok {
		return parseFail[dto.GenerateCoupletReq]("请求体必须为 JSON 对象")
	}

	theme := asTrimmedString(body["theme"])
	if theme == "" {
		return parseFail[dto.GenerateCoupletReq]("theme 不能为空")
	}
	if utf8.RuneCountInString(theme) > maxThemeLength {
		return parseFail[dto.GenerateCoupletReq]("theme 过长，请控制在 50 字以内")
	}

	return parseOK(dto.GenerateCoupletReq{
		Theme:      theme,
		Style:      orDefault(asTrimmedString(body["style"]), defaultStyle),
		Industry:   orDefault(asTrimmedString(body["industry"]), defaultIndustry),
		Tone:       orDefault(asTrimmedString(body["tone"]), defaultTone),
		TabooWords: normalizeTabooWords(body["tabooWords"]),
	})
}

// posterRequiredFields 海报必填字段，按顺序报告第一个缺失项
var posterRequiredFields = []string{"theme", "topLine", "bottomLine", "horizontal"}

// ParsePosterRequest 校验海报生成请求
func ParsePosterRequest(payload any) ParseResult[dto.PosterReq] {
	body, ok := payload.(map[string]any)
	if !ok {
		return parseFail[dto.PosterReq]("请求体必须是 JSON 对象")
	}

	for _, field := range posterRequiredFields {
		if asTrimmedString(body[field]) == "" {
			return parseFail[dto.PosterReq](field + " 不能为空")
		}
	}

	req := dto.PosterReq{
		Theme:      asTrimmedString(body["theme"]),
		TopLine:    asTrimmedString(body["topLine"]),
		BottomLine: asTrimmedString(body["bottomLine"]),
		Horizontal: asTrimmedString(body["horizontal"]),
	}
	if style, isString := body["style"].(string); isString {
		trimmed := trimText(style)
		req.Style = &trimmed
	}

	return parseOK(req)
}

// ==================== 模型输出解析 ====================

// ExtractJSON 提取模型输出中的 JSON 文本
// 包含 ``` 代码块（可带 json 标记）时取其内部，否则取去空白后的全文
func ExtractJSON(raw string) string {
	if m := fencedBlock.FindStringSubmatch(raw); m != nil && m[1] != "" {
		return trimText(m[1])
	}
	return trimText(raw)
}

// ParseModelCoupletOutput 解析并校验模型返回的春联 JSON
func ParseModelCoupletOutput(raw string) ParseResult[dto.CoupletResult] {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || parsed == nil {
		return parseFail[dto.CoupletResult]("模型返回不是合法 JSON")
	}

	fields, _ := parsed.(map[string]any)
	result := dto.CoupletResult{
		TopLine:     asTrimmedString(fields["topLine"]),
		BottomLine:  asTrimmedString(fields["bottomLine"]),
		Horizontal:  asTrimmedString(fields["horizontal"]),
		Explanation: asTrimmedString(fields["explanation"]),
		StyleTags:   []string{},
	}

	if tags, isList := fields["styleTags"].([]any); isList {
		for _, item := range tags {
			if tag := asTrimmedString(item); tag != "" {
				result.StyleTags = append(result.StyleTags, tag)
			}
		}
	}

	if result.TopLine == "" || result.BottomLine == "" || result.Horizontal == "" || result.Explanation == "" {
		return parseFail[dto.CoupletResult]("模型返回字段不完整")
	}

	return parseOK(result)
}
