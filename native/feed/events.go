package feed

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"namechain/core/types"
)

const (
	EventTypeMessagePosted   = "feed.message.posted"
	EventTypeMessageDeleted  = "feed.message.deleted"
	EventTypeMessageRestored = "feed.message.restored"
	EventTypeReplyPosted     = "feed.reply.posted"
	EventTypeReplyDeleted    = "feed.reply.deleted"
	EventTypeReplyRestored   = "feed.reply.restored"
	EventTypeCommentPosted   = "feed.comment.posted"
	EventTypeCommentDeleted  = "feed.comment.deleted"
	EventTypeCommentRestored = "feed.comment.restored"
)

func newMessageEvent(eventType string, engine common.Address, id uint64, author common.Address) types.Event {
	return types.Event{
		Type: eventType,
		Attributes: map[string]string{
			"engine": engine.Hex(),
			"id":     strconv.FormatUint(id, 10),
			"author": author.Hex(),
		},
	}
}

func newReplyEvent(eventType string, engine common.Address, messageID, replyID uint64, author common.Address) types.Event {
	evt := newMessageEvent(eventType, engine, replyID, author)
	evt.Attributes["messageId"] = strconv.FormatUint(messageID, 10)
	return evt
}

func newCommentEvent(eventType string, engine, subject common.Address, id uint64, author common.Address) types.Event {
	evt := newMessageEvent(eventType, engine, id, author)
	evt.Attributes["subject"] = subject.Hex()
	return evt
}
