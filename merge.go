package main

import (
	"errors"
	"strings"
)

var errNoResponses = errors.New("no responses to merge")

type usageDetail struct {
	object string
	field  string
}

var (
	usageTotals  = []string{"input_tokens", "output_tokens", "total_tokens"}
	usageDetails = []usageDetail{
		{object: "input_tokens_details", field: "cached_tokens"},
		{object: "output_tokens_details", field: "reasoning_tokens"},
	}
)

// mergeResponses folds the replies of a multi-batch run into one response
// shaped like the first. The inputs are never modified.
func mergeResponses(responses []Response) (Response, error) {
	switch len(responses) {
	case 0:
		return nil, errNoResponses
	case 1:
		return responses[0], nil
	}

	merged := responses[0].clone()

	text := wrapFence(strings.Join(fragments(responses...), "\n"))
	if first := firstContent(merged); first != nil {
		first["text"] = text
	}
	if _, ok := merged["output_text"]; ok {
		merged["output_text"] = text
	}

	if usage := merged.usage(); usage != nil {
		sumUsage(usage, responses)
	}

	return merged, nil
}

func firstContent(r Response) map[string]any {
	output := asSlice(r["output"])
	if len(output) == 0 {
		return nil
	}
	content := asSlice(asMap(output[0])["content"])
	if len(content) == 0 {
		return nil
	}
	return asMap(content[0])
}

func sumUsage(dst map[string]any, responses []Response) {
	for _, key := range usageTotals {
		var total int64
		for _, r := range responses {
			total += intField(r.usage(), key)
		}
		dst[key] = total
	}

	for _, d := range usageDetails {
		detail := asMap(dst[d.object])
		if detail == nil {
			continue
		}
		var total int64
		for _, r := range responses {
			total += intField(asMap(r.usage()[d.object]), d.field)
		}
		detail[d.field] = total
	}
}
