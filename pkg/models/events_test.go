package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeModerationEvent(t *testing.T) {
	payload := []byte(`{"action":"UPDATE","message":{"id":7,"groupId":1,"senderId":42,"senderUsername":"alice","content":"hello"}}`)

	event, err := DecodeModerationEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdate, event.Action)
	assert.Equal(t, int64(7), event.Message.ID)
	assert.Equal(t, int64(42), event.Message.SenderID)
}

func TestDecodeModerationEvent_MissingActionDefaultsToCreate(t *testing.T) {
	payload := []byte(`{"message":{"id":7,"senderId":42,"content":"hello"}}`)

	event, err := DecodeModerationEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, event.Action)
}

func TestDecodeModerationEvent_UnknownActionRejected(t *testing.T) {
	payload := []byte(`{"action":"ARCHIVE","message":{"id":7}}`)

	_, err := DecodeModerationEvent(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestDecodeModerationEvent_MissingMessageIDRejected(t *testing.T) {
	payload := []byte(`{"action":"CREATE","message":{"content":"hello"}}`)

	_, err := DecodeModerationEvent(payload)
	require.Error(t, err)
}

func TestDecodeModerationEvent_MissingContentRejected(t *testing.T) {
	payload := []byte(`{"action":"CREATE","message":{"id":7,"senderId":42}}`)

	_, err := DecodeModerationEvent(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}

func TestDecodeModerationEvent_DeleteWithoutContentAccepted(t *testing.T) {
	payload := []byte(`{"action":"DELETE","message":{"id":7,"senderId":42}}`)

	event, err := DecodeModerationEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, ActionDelete, event.Action)
}

func TestDecodeModerationEvent_MalformedJSON(t *testing.T) {
	_, err := DecodeModerationEvent([]byte(`{not json`))
	require.Error(t, err)
}

func TestDecodeAuditEvent(t *testing.T) {
	payload := []byte(`{"action":"DELETE","entity":"MESSAGE","content":{"id":7,"senderId":42}}`)

	event, err := DecodeAuditEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, ActionDelete, event.Action)
	assert.Equal(t, EntityMessage, event.Entity)
	assert.Equal(t, int64(7), event.Content.ID)
}

func TestDecodeAuditEvent_MissingEntityRejected(t *testing.T) {
	payload := []byte(`{"action":"CREATE","content":{"id":7}}`)

	_, err := DecodeAuditEvent(payload)
	require.Error(t, err)
}

func TestDecodeCensorshipDirective(t *testing.T) {
	directive, err := DecodeCensorshipDirective([]byte(`{"messageId":7}`))
	require.NoError(t, err)
	assert.Equal(t, int64(7), directive.MessageID)
}

func TestDecodeCensorshipDirective_MissingIDRejected(t *testing.T) {
	_, err := DecodeCensorshipDirective([]byte(`{}`))
	require.Error(t, err)
}
