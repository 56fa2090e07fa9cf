package routes

import (
	"strings"

	"agrimarket-server/models"
	"agrimarket-server/realtime"
	"agrimarket-server/storage"
	"agrimarket-server/utils"

	"github.com/kataras/iris/v12"
)

// ChatHandlers carries the messaging port so message persistence stays
// decoupled from the websocket transport.
type ChatHandlers struct {
	publisher realtime.Publisher
}

func NewChatHandlers(publisher realtime.Publisher) *ChatHandlers {
	return &ChatHandlers{publisher: publisher}
}

type SendMessageInput struct {
	RentalRequestID uint   `json:"rentalRequestId" validate:"required"`
	Message         string `json:"message" validate:"required"`
}

// SendMessage persists a negotiation message and fans it out: once to the
// negotiation room for open chat windows, once to the receiver's personal
// room for unread badges. Chat is only open while the request is PENDING.
func (h *ChatHandlers) SendMessage(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var input SendMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if strings.TrimSpace(input.Message) == "" {
		utils.CreateError(iris.StatusBadRequest, "rentalRequestId and message are required", ctx)
		return
	}

	var rentalRequest models.RentalRequest
	if err := storage.DB.First(&rentalRequest, input.RentalRequestID).Error; err != nil {
		utils.CreateNotFound(ctx, "Rental request")
		return
	}

	if !rentalRequest.IsParty(claims.ID) {
		utils.CreateForbidden(ctx)
		return
	}
	if rentalRequest.Status != models.RequestPending {
		utils.CreateError(iris.StatusForbidden, "Chat is closed", ctx)
		return
	}

	chatMessage := models.ChatMessage{
		RentalRequestID: rentalRequest.ID,
		SenderID:        claims.ID,
		ReceiverID:      rentalRequest.OtherParty(claims.ID),
		Message:         input.Message,
	}
	if err := storage.DB.Create(&chatMessage).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// preload sender for client display
	storage.DB.Preload("Sender").First(&chatMessage, chatMessage.ID)

	h.publisher.PublishToRoom(realtime.RequestRoom(rentalRequest.ID), "newMessage", chatMessage)
	h.publisher.PublishToRoom(realtime.UserRoom(chatMessage.ReceiverID), "incomingMessage", chatMessage)

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "chatMessage": chatMessage})
}

// GetHistory returns the conversation in chronological order and marks
// everything addressed to the requester as read. Parties only, and only while
// the negotiation is still open; the PENDING boundary is exact.
func (h *ChatHandlers) GetHistory(ctx iris.Context) {
	claims := utils.GetClaims(ctx)
	requestID, err := ctx.Params().GetUint("rentalRequestID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid rental request id", ctx)
		return
	}

	var rentalRequest models.RentalRequest
	if err := storage.DB.First(&rentalRequest, requestID).Error; err != nil {
		utils.CreateNotFound(ctx, "Rental request")
		return
	}
	if !rentalRequest.IsParty(claims.ID) {
		utils.CreateError(iris.StatusForbidden, "Not authorized to view this chat", ctx)
		return
	}
	if rentalRequest.Status != models.RequestPending {
		utils.CreateError(iris.StatusForbidden, "Chat is closed", ctx)
		return
	}

	var messages []models.ChatMessage
	if err := storage.DB.Where("rental_request_id = ?", requestID).
		Preload("Sender").
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Viewing the history reads everything addressed to the viewer.
	storage.DB.Model(&models.ChatMessage{}).
		Where("rental_request_id = ? AND receiver_id = ? AND read = ?", requestID, claims.ID, false).
		Update("read", true)

	ctx.JSON(iris.Map{"success": true, "messages": messages})
}

// GetUnreadCount partitions the user's unread messages by which side of the
// parent rental request they sit on, for separate owner/renter badges.
func (h *ChatHandlers) GetUnreadCount(ctx iris.Context) {
	claims := utils.GetClaims(ctx)

	var unreadMessages []models.ChatMessage
	if err := storage.DB.Where("receiver_id = ? AND read = ?", claims.ID, false).
		Preload("RentalRequest").
		Find(&unreadMessages).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ownerUnread := 0
	renterUnread := 0
	for _, msg := range unreadMessages {
		switch claims.ID {
		case msg.RentalRequest.OwnerID:
			ownerUnread++
		case msg.RentalRequest.RenterID:
			renterUnread++
		}
	}

	ctx.JSON(iris.Map{
		"success": true,
		"unreadCount": iris.Map{
			"total":  ownerUnread + renterUnread,
			"owner":  ownerUnread,
			"renter": renterUnread,
		},
	})
}
