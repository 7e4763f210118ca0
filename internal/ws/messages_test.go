package ws

import (
	"testing"

	"wordsearch_arena/internal/domain"
)

func TestDecodeClientMessage(t *testing.T) {
	raw := []byte(`{"type":"submit_selection","solution":{"word":"python","start_index":{"row":5,"col":5},"end_index":{"row":0,"col":0}}}`)

	msg, err := decodeClientMessage(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != MsgSubmitSelection {
		t.Fatalf("type = %s; want submit_selection", msg.Type)
	}
	if msg.Solution == nil || msg.Solution.Word != "python" {
		t.Fatalf("solution not decoded: %+v", msg.Solution)
	}
	if msg.Solution.Start != (domain.Cell{Row: 5, Col: 5}) || msg.Solution.End != (domain.Cell{Row: 0, Col: 0}) {
		t.Fatalf("cells not decoded: %+v", msg.Solution)
	}
	if string(msg.Raw) != string(raw) {
		t.Fatal("raw bytes not preserved")
	}
}

func TestDecodeClientMessageUnknownTypeKeepsRaw(t *testing.T) {
	raw := []byte(`{"type":"emoji_reaction","emoji":"🔥"}`)

	msg, err := decodeClientMessage(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != "emoji_reaction" {
		t.Fatalf("type = %s; want emoji_reaction", msg.Type)
	}
	if string(msg.Raw) != string(raw) {
		t.Fatal("raw bytes must survive for relaying")
	}
}

func TestDecodeClientMessageMalformed(t *testing.T) {
	if _, err := decodeClientMessage([]byte(`{not json`)); err == nil {
		t.Fatal("expected decode error")
	}
}
