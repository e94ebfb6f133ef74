package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"couplet_studio_202602/internal/api/dto"
	"couplet_studio_202602/internal/config"
	"couplet_studio_202602/pkg/net"
)

// ==================== 上游常量 ====================

const (
	chatCompletionsPath  = "/chat/completions"
	imageGenerationsPath = "/images/generations"

	coupletTemperature = 0.8
	posterSize         = "1024x1536"
	defaultPosterStyle = "喜庆、年味、国风"

	coupletSystemPrompt = "你是资深春联撰写助手。输出时仅返回 JSON，要求语言工整、吉祥，避免低俗内容。"
)

// ==================== 上游报文 ====================

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionReq struct {
	Model          string         `json:"model"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
	Messages       []chatMessage  `json:"messages"`
}

type chatCompletionResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type imageGenerationReq struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
}

type imageGenerationResp struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

// ==================== 服务 ====================

// AIService 调用上游文本/图片生成服务
type AIService struct {
	config     *config.AIConfig
	client     *resty.Client
	dispatcher net.Dispatcher
}

// NewAIService 创建 AI 服务
func NewAIService(cfg *config.AIConfig, client *resty.Client, dispatcher net.Dispatcher) *AIService {
	return &AIService{
		config:     cfg,
		client:     client,
		dispatcher: dispatcher,
	}
}

func (s *AIService) Provider() string   { return s.config.Provider }
func (s *AIService) TextModel() string  { return s.config.TextModel }
func (s *AIService) ImageModel() string { return s.config.ImageModel }

// ==================== 春联生成 ====================

// GenerateCouplet 生成春联，失败时返回 *AIError
func (s *AIService) GenerateCouplet(ctx context.Context, req *dto.GenerateCoupletReq) (*dto.CoupletResult, error) {
	body := chatCompletionReq{
		Model:          s.config.TextModel,
		Temperature:    coupletTemperature,
		ResponseFormat: responseFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: coupletSystemPrompt},
			{Role: "user", Content: BuildCoupletPrompt(req)},
		},
	}

	raw, err := s.post(ctx, chatCompletionsPath, body, coupletText)
	if err != nil {
		return nil, err
	}

	// 上游返回非 JSON 时按空结果处理
	var payload chatCompletionResp
	_ = json.Unmarshal(raw, &payload)

	var content string
	if len(payload.Choices) > 0 {
		content = payload.Choices[0].Message.Content
	}
	if content == "" {
		return nil, coupletText.emptyError()
	}

	parsed := ParseModelCoupletOutput(ExtractJSON(content))
	if !parsed.OK {
		return nil, &AIError{
			Type:    ErrTypeModelOutputParse,
			Message: parsed.Error + "，请稍后重试。",
		}
	}

	return &parsed.Data, nil
}

// BuildCoupletPrompt 构建春联生成的用户提示词
func BuildCoupletPrompt(req *dto.GenerateCoupletReq) string {
	taboo := "无"
	if req.TabooWords != nil {
		taboo = strings.Join(req.TabooWords, "、")
	}

	return strings.Join([]string{
		"主题：" + req.Theme,
		"风格：" + req.Style,
		"行业：" + req.Industry,
		"语气：" + req.Tone,
		"禁忌词：" + taboo,
		"请严格输出 JSON，不要输出 markdown 代码块，不要额外说明。",
		"JSON schema: { topLine: string, bottomLine: string, horizontal: string, explanation: string, styleTags: string[] }",
	}, "\n")
}

// ==================== 海报生成 ====================

// GeneratePoster 生成春联海报，失败时返回 *AIError
func (s *AIService) GeneratePoster(ctx context.Context, req *dto.PosterReq) (*dto.PosterResult, error) {
	body := imageGenerationReq{
		Model:  s.config.ImageModel,
		Prompt: BuildPosterPrompt(req),
		Size:   posterSize,
	}

	raw, err := s.post(ctx, imageGenerationsPath, body, posterText)
	if err != nil {
		return nil, err
	}

	var payload imageGenerationResp
	_ = json.Unmarshal(raw, &payload)

	if len(payload.Data) == 0 || (payload.Data[0].B64JSON == "" && payload.Data[0].URL == "") {
		return nil, posterText.emptyError()
	}

	return &dto.PosterResult{
		ImageBase64: payload.Data[0].B64JSON,
		ImageURL:    payload.Data[0].URL,
	}, nil
}

// BuildPosterPrompt 构建海报提示词：竖版构图、横批居中、右上联左下联、8% 安全边距、红金配色
func BuildPosterPrompt(req *dto.PosterReq) string {
	style := defaultPosterStyle
	if req.Style != nil && *req.Style != "" {
		style = *req.Style
	}

	return strings.Join([]string{
		"请生成一张中国春节对联主题海报（竖版 2:3 比例）。",
		"主题：" + req.Theme,
		"风格：" + style,
		"横批：" + req.Horizontal,
		"上联：" + req.TopLine,
		"下联：" + req.BottomLine,
		"布局要求：",
		"- 横批位于画面上方居中位置，距离顶部边缘留有充足的装饰空白，确保横批文字完整显示不被裁切。",
		"- 上联在画面右侧竖排书写，下联在画面左侧竖排书写，符合传统对联从右到左的阅读顺序。",
		"- 所有文字（横批、上联、下联）必须完整处于画面安全区域内，距离图片四边至少保留 8% 的边距。",
		"画面要求：红金主色调，传统中国风装饰纹样，文字清晰可读，适合社交分享封面。",
	}, "\n")
}

// ==================== 上游调用 ====================

// post 发送一次上游请求并把传输层失败映射为 *AIError
func (s *AIService) post(ctx context.Context, path string, body any, text operationText) ([]byte, error) {
	if s.config.Token == "" {
		return nil, NewServerConfigError()
	}

	req := net.NewUpstreamRequest(ctx, s.client, s.config.Token).SetBody(body)
	resp, err := s.dispatcher.Send(ctx, req, http.MethodPost, path)
	if err != nil {
		if errors.Is(err, net.ErrTimeout) {
			return nil, &AIError{
				Type:    ErrTypeUpstreamTimeout,
				Message: fmt.Sprintf(text.timeout, int64(s.dispatcher.Timeout()/time.Second)),
				Cause:   err,
			}
		}
		return nil, &AIError{Type: ErrTypeNetworkOrService, Message: text.network, Cause: err}
	}

	if !resp.IsSuccess() {
		return nil, &AIError{
			Type:    ErrTypeUpstream,
			Message: fmt.Sprintf(text.upstream, resp.StatusCode()),
			Cause:   fmt.Errorf("上游返回 [%d]: %s", resp.StatusCode(), truncate(resp.String(), 512)),
		}
	}

	return resp.Body(), nil
}

// truncate 按字符截断
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
