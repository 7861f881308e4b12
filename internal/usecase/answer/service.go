// Package answer orchestrates the full question-to-answer pipeline shared
// by the HTTP and LINE front ends.
package answer

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/campusbot/internal/domain"
	"github.com/kailas-cloud/campusbot/internal/usecase/classify"
	"github.com/kailas-cloud/campusbot/internal/usecase/contextbuild"
)

// Fixed user-facing replies when an upstream model call fails. A failed
// turn is never recorded in history.
const (
	embedFailReply = "ขอภัย ไม่สามารถประมวลผลคำถามได้ในขณะนี้"
	chatFailReply  = "ขออภัย เกิดข้อผิดพลาดในการประมวลผล กรุณาลองใหม่อีกครั้ง"
)

const (
	chatTemperature   = 0.2
	chatMaxTokens     = 1000
	systemInstruction = `คุณคือ CMTC IT Chatbot ผู้ช่วยตอบคำถามเกี่ยวกับแผนกเทคโนโลยีสารสนเทศ วิทยาลัยเทคนิคเชียงใหม่

หลักการตอบคำถาม:
- ตอบตามข้อมูลที่ให้มาเท่านั้น ห้ามสมมติข้อมูล
- ถ้าถามจำนวน ให้นับตามข้อมูลจริง
- ถ้าถาม "อาจารย์แผนก IT" หรือ "อาจารย์ประจำแผนก" ให้ตอบเฉพาะอาจารย์ในแผนก IT เท่านั้น (ไม่รวมอาจารย์พิเศษ/ผู้บริหาร)
- ถ้าถาม "อาจารย์ที่มาสอน" หรือ "อาจารย์ผู้สอนวิชา" ให้ตอบทั้งอาจารย์ประจำแผนกและอาจารย์พิเศษ
- ถ้าถามตารางเรียน ให้ระบุวัน เวลา ห้อง และอาจารย์ผู้สอน
- ถ้าคำถามคลุมเครือ ให้ดูจากประวัติการสนทนา
- ตอบสั้น กระชับ เป็นธรรมชาติ เป็นมิตร
- ใช้ภาษาไทยในการตอบ
- ถ้าไม่มีข้อมูล ให้บอกตรงๆ ว่าไม่มีข้อมูล`
)

// ContextBuilder is the consumer contract for context assembly.
type ContextBuilder interface {
	Build(analysis classify.Analysis, queryVec []float32) contextbuild.Result
}

// ConversationStore is the consumer contract for per-user history.
type ConversationStore interface {
	Append(userID string, role domain.Role, content string)
	Get(userID string) []domain.Turn
}

// Service generates answers: embed the question, classify it, build
// context, call the chat model, update history.
type Service struct {
	embedder domain.Embedder
	chat     domain.ChatModel
	contexts ContextBuilder
	history  ConversationStore
	logger   *zap.Logger
}

// New creates an answer service.
func New(
	embedder domain.Embedder,
	chat domain.ChatModel,
	contexts ContextBuilder,
	history ConversationStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		embedder: embedder,
		chat:     chat,
		contexts: contexts,
		history:  history,
		logger:   logger,
	}
}

// Answer runs the pipeline for one question and returns the reply text.
// Upstream failures map to fixed apology strings; only a successful
// exchange is appended to the user's history.
func (s *Service) Answer(ctx context.Context, question, userID string) string {
	emb, err := s.embedder.Embed(ctx, question)
	if err != nil || len(emb.Embedding) == 0 {
		s.logger.Error("Failed to embed question",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return embedFailReply
	}

	analysis := classify.Classify(question)
	built := s.contexts.Build(analysis, emb.Embedding)

	prompt := assemblePrompt(built, s.history.Get(userID), question)

	reply, err := s.chat.Complete(ctx, domain.ChatRequest{
		Prompt:      prompt,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		s.logger.Error("Chat completion failed",
			zap.String("user_id", userID),
			zap.Bool("full_dataset", analysis.NeedsFullDataset),
			zap.Error(err),
		)
		return chatFailReply
	}

	s.history.Append(userID, domain.RoleUser, question)
	s.history.Append(userID, domain.RoleAssistant, reply)

	return reply
}

// assemblePrompt joins instruction, context, dataset summary, transcript,
// and the literal question into the single user message sent upstream.
func assemblePrompt(built contextbuild.Result, turns []domain.Turn, question string) string {
	var sb strings.Builder
	sb.WriteString(systemInstruction)
	sb.WriteString("\n\n")
	sb.WriteString(built.Context)
	sb.WriteString("\n")
	sb.WriteString(built.DatasetInfo)
	sb.WriteString(renderTranscript(turns))
	sb.WriteString("\n\nคำถาม: ")
	sb.WriteString(question)
	sb.WriteString("\n\nกรุณาตอบคำถามตามข้อมูลที่มีเท่านั้น")
	return sb.String()
}

// renderTranscript formats prior turns, oldest first. Empty history renders
// as an empty string, not an empty header.
func renderTranscript(turns []domain.Turn) string {
	if len(turns) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\nประวัติการสนทนา:\n")
	for i, t := range turns {
		if i > 0 {
			sb.WriteString("\n")
		}
		if t.Role == domain.RoleUser {
			sb.WriteString("ผู้ใช้: ")
		} else {
			sb.WriteString("Bot: ")
		}
		sb.WriteString(t.Content)
	}
	return sb.String()
}
