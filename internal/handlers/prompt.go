package handlers

import (
	"encoding/json"
	"net/http"

	"geekqa/internal/contextutil"
	"geekqa/internal/rag"
)

// MaxPromptBodyBytes bounds the POST /prompt request body.
const MaxPromptBodyBytes = 64 << 10

// PromptHandler answers questions posted to the QA endpoint.
type PromptHandler struct {
	qa rag.Answerer
}

// NewPromptHandler creates a new PromptHandler.
func NewPromptHandler(qa rag.Answerer) *PromptHandler {
	return &PromptHandler{qa: qa}
}

// PromptRequest is the QA request body.
//
// swagger:model PromptRequest
type PromptRequest struct {
	// The question text
	Data *string `json:"data"`
}

// PromptResponse wraps either an answer or an error under "data".
//
// swagger:model PromptResponse
type PromptResponse struct {
	Data any `json:"data"`
}

// AnswerPayload is the happy-path body of a PromptResponse.
type AnswerPayload struct {
	Text string `json:"text"`
}

// ErrorPayload is the failure body of a PromptResponse.
type ErrorPayload struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail names the failure reason and a message fit to show the user.
type ErrorDetail struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// ServeHTTP handles HTTP requests for questions.
//
// swagger:route POST /prompt askQuestion
//
// # Answer a question
//
// Retrieves documents for the question and generates an answer with the language model.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Answer generated
//	'400':
//	  description: Empty question or malformed body
//	'502':
//	  description: Generation service failed
//	'503':
//	  description: Retrieval service failed
//	'504':
//	  description: Generation timed out
func (h *PromptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req PromptRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxPromptBodyBytes))
	if err := dec.Decode(&req); err != nil || req.Data == nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		h.writeFailure(w, r, http.StatusBadRequest, rag.ReasonInvalidInput)
		return
	}

	answer, err := h.qa.AnswerQuestion(ctx, *req.Data)
	if err != nil {
		reason := rag.ReasonOf(err)
		if reason == "" {
			logger.ErrorContext(ctx, "unexpected qa error", "error", err)
			reason = rag.ReasonConfiguration
		}
		h.writeFailure(w, r, statusForReason(reason), reason)
		return
	}

	writeJSON(ctx, w, http.StatusOK, PromptResponse{Data: AnswerPayload{Text: answer.Text}})
}

func (h *PromptHandler) writeFailure(w http.ResponseWriter, r *http.Request, status int, reason rag.Reason) {
	if reason.Retryable() {
		w.Header().Set("Retry-After", "5")
	}
	writeJSON(r.Context(), w, status, PromptResponse{Data: ErrorPayload{Error: ErrorDetail{
		Reason:  string(reason),
		Message: messageForReason(reason),
	}}})
}

func statusForReason(reason rag.Reason) int {
	switch reason {
	case rag.ReasonInvalidInput:
		return http.StatusBadRequest
	case rag.ReasonRetrievalUnavailable:
		return http.StatusServiceUnavailable
	case rag.ReasonGenerationUnavailable:
		return http.StatusBadGateway
	case rag.ReasonGenerationTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func messageForReason(reason rag.Reason) string {
	switch reason {
	case rag.ReasonInvalidInput:
		return "質問を入力してください。"
	case rag.ReasonRetrievalUnavailable:
		return "文書検索サービスに接続できません。しばらくしてから再度お試しください。"
	case rag.ReasonGenerationUnavailable:
		return "回答生成サービスに接続できません。しばらくしてから再度お試しください。"
	case rag.ReasonGenerationTimeout:
		return "回答の生成がタイムアウトしました。しばらくしてから再度お試しください。"
	default:
		return "サーバーの設定に問題があります。管理者に連絡してください。"
	}
}
