package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"dermadect/internal/docstore"
	"dermadect/internal/interfaces"
	"dermadect/internal/llm"
	"dermadect/internal/models"

	"github.com/go-redis/redis_rate/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
)

const symptomAnalysisPrompt = `You are a healthcare assistant specializing in disease prediction based on symptoms. Follow this structured format:

**Symptom Analysis**
- Primary symptoms: [list main symptoms]
- Duration: [how long symptoms have been present]
- Severity: [1-10 scale]
- Location: [where symptoms occur]
- Triggers/Patterns: [what causes or worsens symptoms]

**Possible Conditions**
- Most likely: [primary diagnosis with confidence %]
- Secondary possibilities: [other potential diagnoses with confidence %]
- Ruling out: [conditions that don't match the symptoms]

**Next Steps**
- Recommended tests: [specific medical tests needed]
- Specialist referral: [which type of doctor to see]
- Urgency level: [immediate/urgent/non-urgent]

**Self-Care Recommendations**
- Immediate actions: [what to do now]
- Monitoring: [what to watch for]
- When to seek help: [specific warning signs]

Always conclude with: "This is a preliminary assessment. Please consult a healthcare professional for proper diagnosis and treatment."`

const generalHealthPrompt = `Provide health information with:
- Evidence-based facts
- Actionable recommendations
- Professional consultation guidance

Format clearly with headers and bullet points.
Include disclaimer: "This is general information, not medical advice."`

const healthTrackingPrompt = `Help track health metrics and provide insights:
- Record the provided metrics
- Compare with previous data
- Provide trend analysis
- Suggest improvements

Format with clear sections and actionable insights.`

const healthTipPrompt = `Generate a random health tip or advice. Follow this format:

**Health Tip**
- Topic: [specific health topic]
- Tip: [practical, actionable advice]
- Why it matters: [brief explanation]
- Implementation: [how to apply it]

Keep it concise, practical, and evidence-based.`

const healthJokePrompt = `Generate a health-related joke. Follow these guidelines:
- Keep it light-hearted and appropriate
- Make it relatable to healthcare or wellness
- Include a punchline
- If a topic is provided, make it relevant to that topic

Format:
Joke: [the joke]
Punchline: [the punchline]`

const symptomFollowupQuestion = `To better assess your symptoms and predict possible conditions:
1. Where exactly do you feel the symptoms?
2. How long have you been experiencing this?
3. On a scale of 1-10, how severe is it?
4. Are there any triggers or patterns?
5. Any other symptoms you're experiencing?`

var symptomKeywords = []string{"symptom", "pain", "hurt", "ache", "fever", "nausea", "headache", "joint"}
var trackingKeywords = []string{"track", "record", "measure", "monitor", "log"}

type ServiceChat struct {
	container *do.Injector
	redisDB   redis.UniversalClient
	rs        *redsync.Redsync
	provider  llm.Provider
	limiter   interfaces.Limiter

	serviceConfig *ServiceConfig
}

func NewServiceChat(container *do.Injector) (*ServiceChat, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	provider, err := do.Invoke[llm.Provider](container)
	if err != nil {
		return nil, err
	}

	limiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceChat{container, redisDB, rs, provider, limiter, serviceConfig}, nil
}

// ProcessMessage answers a healthcare question in the context of the user's
// conversation. Messages that look like symptom reports get a structured
// assessment, after enough detail has been collected.
func (service *ServiceChat) ProcessMessage(ctx context.Context, request *models.ChatRequest) (*models.ChatResponse, error) {
	if strings.TrimSpace(request.Message) == "" {
		return nil, errorx.Wrap(errors.New("empty message"), errorx.Validation)
	}

	if err := service.limiter.Allow(ctx, RateLimitKeyChat(request.UserID), redis_rate.PerMinute(CHAT_RATE_LIMIT_PER_MINUTE)); err != nil {
		return nil, err
	}

	mutex := service.rs.NewMutex(LockKeyUserConversation(request.UserID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(errors.New("conversation locked"), errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	conversation, err := service.loadConversation(ctx, request)
	if err != nil {
		return nil, err
	}

	conversation.AddMessage(models.RoleUser, request.Message)

	reply, followup, err := service.reply(ctx, conversation)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	conversation.AddMessage(models.RoleAssistant, reply)

	if _, err := docstore.SaveConversation(ctx, service.redisDB, conversation); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	response := &models.ChatResponse{
		Response:       reply,
		ConversationID: conversation.ID,
		Context:        conversation.Messages,
	}
	if followup != "" {
		response.RequiresFollowup = true
		response.FollowupQuestion = followup
	}
	return response, nil
}

func (service *ServiceChat) loadConversation(ctx context.Context, request *models.ChatRequest) (*models.Conversation, error) {
	if request.ConversationID != "" {
		conversation, err := docstore.GetConversation(ctx, service.redisDB, request.ConversationID)
		if err == nil {
			return conversation, nil
		}
		if !errors.Is(err, docstore.ErrNotFound) {
			return nil, errorx.Wrap(err, errorx.Service)
		}
	}

	return &models.Conversation{
		ID:        uuid.New().String(),
		UserID:    request.UserID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// reply picks a prompt from the last user message and completes it with the
// whole conversation as context. A first symptom report short-circuits into
// a canned follow-up questionnaire instead of calling the model.
func (service *ServiceChat) reply(ctx context.Context, conversation *models.Conversation) (string, string, error) {
	last := strings.ToLower(conversation.Messages[len(conversation.Messages)-1].Content)

	system := generalHealthPrompt
	switch {
	case containsAny(last, trackingKeywords):
		system = healthTrackingPrompt
	case containsAny(last, symptomKeywords):
		if service.countSymptomMessages(conversation) < 2 {
			return symptomFollowupQuestion, symptomFollowupQuestion, nil
		}
		system = symptomAnalysisPrompt
	}

	// older turns are dropped to keep the prompt bounded
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHAT_HISTORY_LIMIT, DEFAULT_CHAT_HISTORY_LIMIT)
	history := conversation.Messages
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	messages := make([]llm.Message, 0, len(history))
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == models.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}

	reply, err := service.provider.Complete(ctx, system, messages, 0.7)
	if err != nil {
		return "", "", err
	}
	return reply, "", nil
}

func (service *ServiceChat) countSymptomMessages(conversation *models.Conversation) int {
	count := 0
	for _, m := range conversation.Messages {
		if m.Role == models.RoleUser && containsAny(strings.ToLower(m.Content), symptomKeywords) {
			count++
		}
	}
	return count
}

// HealthTip produces a standalone tip, optionally themed by topic.
func (service *ServiceChat) HealthTip(ctx context.Context, topic string) (*models.ChatResponse, error) {
	return service.standalone(ctx, healthTipPrompt, "Generate a health tip about %s", topic,
		"I couldn't generate a health tip right now. Please try again.")
}

// HealthJoke produces a standalone joke, optionally themed by topic.
func (service *ServiceChat) HealthJoke(ctx context.Context, topic string) (*models.ChatResponse, error) {
	return service.standalone(ctx, healthJokePrompt, "Generate a health joke about %s", topic,
		"I couldn't think of a joke right now. Please try again.")
}

func (service *ServiceChat) standalone(ctx context.Context, system string, promptFormat string, topic string, apology string) (*models.ChatResponse, error) {
	if topic == "" {
		topic = "general health"
	}

	reply, err := service.provider.Complete(ctx, system, []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf(promptFormat, topic)},
	}, 0.7)
	if err != nil {
		log.Printf("standalone completion failed: %v", err)
		reply = apology
	}

	return &models.ChatResponse{
		Response:       reply,
		ConversationID: fmt.Sprintf("%d", time.Now().Unix()),
	}, nil
}

// SaveHealthMetrics appends user-reported measurements, stamping any that
// arrive without a timestamp.
func (service *ServiceChat) SaveHealthMetrics(ctx context.Context, userID string, metrics []models.HealthMetric) error {
	for i := range metrics {
		if metrics[i].Timestamp.IsZero() {
			metrics[i].Timestamp = time.Now()
		}
	}

	if err := docstore.AppendHealthMetrics(ctx, service.redisDB, userID, metrics); err != nil {
		return errorx.Wrap(err, errorx.Service)
	}
	return nil
}

func (service *ServiceChat) GetHealthMetrics(ctx context.Context, userID string) ([]models.HealthMetric, error) {
	doc, err := docstore.GetHealthMetrics(ctx, service.redisDB, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return []models.HealthMetric{}, nil
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return doc.Metrics, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
