package outline

import (
	"fmt"

	"github.com/richinex/slidesmith/llm"
)

const outlineShape = `{
    "presentation_title": "The Title Here",
    "subtitle": "The Subtitle Here",
    "slides": [
        { "title": "Section Name", "content": ["Bullet 1", "Bullet 2"] }
    ]
}`

const (
	creativeSystem = "You are a Presentation Creator. You design professional slide decks and answer with valid JSON only."
	strictSystem   = "You are a Data Extractor. You copy the structure of a document into slides and answer with valid JSON only."
)

// BuildPrompt returns the messages for one outline request. Creative
// prompts ask the model to invent a deck on the topic; strict prompts
// ask it to extract the deck from the text as written.
func BuildPrompt(input string, mode Mode) []llm.ChatMessage {
	if mode == ModeCreative {
		return []llm.ChatMessage{
			llm.SystemMessage(creativeSystem),
			llm.UserMessage(fmt.Sprintf(
				"TOPIC: %q\nINSTRUCTIONS: Create professional slides on this topic. Output valid JSON only.\nSTRUCTURE:\n%s",
				input, outlineShape)),
		}
	}
	return []llm.ChatMessage{
		llm.SystemMessage(strictSystem),
		llm.UserMessage(fmt.Sprintf(
			"INPUT TEXT: %q\nINSTRUCTIONS: Extract the content exactly as written, keeping its section order and wording. Output valid JSON only.\nSTRUCTURE:\n%s",
			input, outlineShape)),
	}
}
