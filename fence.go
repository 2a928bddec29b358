package main

import "strings"

const fence = "```"

// stripFence removes one leading and one trailing fence line. Text that
// merely contains a fence elsewhere is left alone.
func stripFence(text string) string {
	text = strings.TrimSpace(text)

	switch {
	case text == fence:
		return ""
	case strings.HasPrefix(text, fence+"\n"):
		text = text[len(fence)+1:]
	case strings.HasPrefix(text, fence+"\r\n"):
		text = text[len(fence)+2:]
	}

	if text == fence {
		return ""
	}
	if strings.HasSuffix(text, "\n"+fence) {
		text = strings.TrimSuffix(text, "\n"+fence)
	}

	return strings.TrimSpace(text)
}

func wrapFence(body string) string {
	return fence + "\n" + body + "\n" + fence
}

// fragments collects the non-empty, fence-stripped texts of all responses.
func fragments(responses ...Response) []string {
	var out []string
	for _, r := range responses {
		for _, t := range r.texts() {
			if s := stripFence(t); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
