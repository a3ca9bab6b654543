package round

// FallbackID is the id of the fixed item served when generation fails.
const FallbackID = "fallback"

// FallbackItems returns the fixed round served when the text upstream cannot
// produce anything. Content and URLs are stable so clients can render it
// without any upstream.
func FallbackItems(topic string) []ChoiceItem {
	return []ChoiceItem{{
		ID:          FallbackID,
		OptionText1: "Only ramen for the rest of your life",
		OptionText2: "Only pickled radish for the rest of your life",
		Keyword1:    "ramen",
		Keyword2:    "radish",
		ImageURL1:   "https://images.unsplash.com/photo-1554866585-cd94860890b7?w=800",
		ImageURL2:   "https://images.unsplash.com/photo-1622483767028-3f66f32aef97?w=800",
		Topic:       topic,
	}}
}
