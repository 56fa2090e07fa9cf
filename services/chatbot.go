package services

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Rule-based answers tried before the AI call, keyed by language then intent.
var knowledgeBase = map[string]map[string]string{
	"en": {
		"fertilizer_cotton": "For cotton crops, fertilizers rich in Nitrogen and Potash are recommended.",
		"seed_cotton":       "Hybrid cotton seeds from approved brands are suitable for better yield.",
		"irrigation":        "Proper irrigation depends on soil type and crop stage.",
		"platform_help":     "You can buy seeds, pesticides, rent equipment, and view crop recommendations on this platform.",
	},
	"hi": {
		"fertilizer_cotton": "कपास की फसल के लिए नाइट्रोजन और पोटाश युक्त उर्वरक उपयुक्त होते हैं।",
		"seed_cotton":       "अच्छी पैदावार के लिए प्रमाणित हाइब्रिड कपास बीज उपयोग करें।",
		"irrigation":        "सिंचाई मिट्टी के प्रकार और फसल की अवस्था पर निर्भर करती है।",
		"platform_help":     "इस प्लेटफॉर्म पर आप बीज, कीटनाशक खरीद सकते हैं और उपकरण किराए पर ले सकते हैं।",
	},
	"mr": {
		"fertilizer_cotton": "कापस पिकासाठी नायट्रोजन आणि पोटॅशयुक्त खत उपयुक्त असते.",
		"seed_cotton":       "चांगल्या उत्पादनासाठी प्रमाणित हायब्रिड कापूस बियाणे वापरा.",
		"irrigation":        "सिंचन मातीचा प्रकार आणि पिकाच्या अवस्थेवर अवलंबून असते.",
		"platform_help":     "या प्लॅटफॉर्मवर तुम्ही बियाणे, कीटकनाशके खरेदी करू शकता आणि उपकरणे भाड्याने घेऊ शकता.",
	},
}

// Static apology used when the AI provider is down or unconfigured.
const chatbotFallbackReply = "सध्या तज्ञ सल्ला उपलब्ध नाही. कृपया स्थानिक कृषी तज्ञांचा सल्ला घ्या."

const chatbotSystemPrompt = "You are an AI assistant for Indian farmers. " +
	"Reply in very simple language. " +
	"If the question is in Marathi, reply in Marathi. " +
	"If in Hindi, reply in Hindi. " +
	"Otherwise reply in English. " +
	"Avoid technical words. " +
	"IMPORTANT: Format your response using Markdown. " +
	"Use **Bold** for important points. " +
	"Use Bullet points for lists. " +
	"Use ### Headers for sections."

// DetectIntent maps a free-form question to a knowledge-base intent, or ""
// when no rule applies.
func DetectIntent(message string) string {
	msg := strings.ToLower(message)

	switch {
	case strings.Contains(msg, "fertilizer"), strings.Contains(msg, "उर्वरक"), strings.Contains(msg, "खत"):
		return "fertilizer_cotton"
	case strings.Contains(msg, "seed"), strings.Contains(msg, "बीज"), strings.Contains(msg, "बियाणे"):
		return "seed_cotton"
	case strings.Contains(msg, "irrigation"), strings.Contains(msg, "सिंचाई"), strings.Contains(msg, "सिंचन"):
		return "irrigation"
	case strings.Contains(msg, "platform"), strings.Contains(msg, "प्लेटफॉर्म"), strings.Contains(msg, "अ‍ॅप"):
		return "platform_help"
	}
	return ""
}

// RuleBasedAnswer returns the canned answer for the message in the given
// language, or "" when no rule matches.
func RuleBasedAnswer(message, language string) string {
	intent := DetectIntent(message)
	if intent == "" {
		return ""
	}
	if answers, ok := knowledgeBase[language]; ok {
		return answers[intent]
	}
	return ""
}

// AskGroq sends the question to Groq's OpenAI-compatible chat API. On any
// failure it degrades to the static localized apology rather than surfacing
// the upstream error.
func AskGroq(ctx context.Context, question string) string {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		return chatbotFallbackReply
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = "https://api.groq.com/openai/v1"
	client := openai.NewClientWithConfig(config)

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       "llama-3.1-8b-instant",
		Temperature: 0.4,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: chatbotSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil || len(resp.Choices) == 0 {
		log.Printf("Groq AI error: %v", err)
		return chatbotFallbackReply
	}

	return resp.Choices[0].Message.Content
}
