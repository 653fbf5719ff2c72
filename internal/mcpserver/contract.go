package mcpserver

// ProfileSchemaContract describes the canonical accessibility profile schema
// that LLM consumers should follow when deriving or updating profiles.
const ProfileSchemaContract = `# Attune Profile Schema Contract

Every accessibility profile stored in Attune follows this JSON structure.

## Structure

` + "```" + `json
{
  "text": {
    "chunking": {
      "strategy": "sentence_limit",
      "maxLength": 4
    },
    "vocabulary": {
      "simplificationLevel": "intermediate"
    }
  },
  "simplification": {
    "useAnalogies": false,
    "summarization": {
      "defaultState": "expanded",
      "summaryLength": 30
    }
  },
  "visuals": {
    "distractionFilter": {
      "enabled": false,
      "sensitivity": "medium"
    }
  },
  "preferences": {
    "fontSize": "medium",
    "lineHeight": "normal",
    "colorScheme": "default"
  }
}
` + "```" + `

## Rules

1. **` + "`" + `text.chunking.strategy` + "`" + `** is ` + "`" + `sentence_limit` + "`" + ` or ` + "`" + `none` + "`" + `. When it is
   ` + "`" + `sentence_limit` + "`" + `, ` + "`" + `maxLength` + "`" + ` is required and must be at least 1.
2. **` + "`" + `text.vocabulary.simplificationLevel` + "`" + `** is one of ` + "`" + `none` + "`" + `, ` + "`" + `basic` + "`" + `,
   ` + "`" + `intermediate` + "`" + `, ` + "`" + `advanced` + "`" + `. Higher levels replace progressively more
   specialised vocabulary.
3. **` + "`" + `simplification.useAnalogies` + "`" + `** enables inline analogy annotations for
   abstract concepts.
4. **` + "`" + `simplification.summarization.summaryLength` + "`" + `** is a percentage between
   5 and 75.
5. **` + "`" + `visuals.distractionFilter.sensitivity` + "`" + `** is ` + "`" + `low` + "`" + `, ` + "`" + `medium` + "`" + ` or
   ` + "`" + `high` + "`" + `. It only takes effect when ` + "`" + `enabled` + "`" + ` is true.
6. **Metadata** (version, timestamps, provenance) is managed by the server;
   do not set it from a client.

## Questionnaire keys

The ` + "`" + `derive_profile` + "`" + ` tool accepts a JSON object mapping these question
keys to free-text answers:

- ` + "`" + `reading_style` + "`" + ` — how the user prefers passages to be sized
  ("I like shorter paragraphs, 2-3 sentences at most").
- ` + "`" + `complex_topics` + "`" + ` — how the user wants difficult vocabulary handled
  ("Please use simple words").
- ` + "`" + `learning_preference` + "`" + ` — whether examples and analogies help
  ("Analogies and examples work well for me").
- ` + "`" + `distraction` + "`" + ` — how easily visuals pull attention away
  ("I get very distracted by ads and cannot focus").

Unknown keys are ignored; missing keys fall back to the defaults shown above.

## Example

` + "```" + `json
{
  "reading_style": "shorter passages please, 2-3 sentences",
  "complex_topics": "use simple words",
  "learning_preference": "examples help me a lot",
  "distraction": "I get very distracted by moving images"
}
` + "```" + `
`
