package routes

import (
	"agrimarket-server/services"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
)

type ChatbotInput struct {
	Message  string `json:"message" validate:"required"`
	Language string `json:"language"`
}

// AskChatbot answers a farming question. Known intents resolve from the
// local knowledge base; everything else goes to the AI provider, which
// degrades to a canned apology when unreachable.
func AskChatbot(ctx iris.Context) {
	var input ChatbotInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	language := input.Language
	switch language {
	case "en", "hi", "mr":
	default:
		language = "en"
	}

	if answer := services.RuleBasedAnswer(input.Message, language); answer != "" {
		ctx.JSON(iris.Map{"success": true, "source": "knowledge_base", "reply": answer})
		return
	}

	reply := services.AskGroq(ctx.Request().Context(), input.Message)
	ctx.JSON(iris.Map{"success": true, "source": "ai", "reply": reply})
}
