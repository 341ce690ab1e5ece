package weights

import "strings"

// FlattenWrapperSequential drops the numeric indices a PyTorch
// Sequential[Identity, Conv, Identity]-style wrapper leaves in exported
// key names — e.g. "proj_in.1.weight" (index 1 is the real layer, 0 and 2
// are identity padding) becomes "proj_in.weight". Only single-digit
// wrapper indices known to be pure pass-throughs are stripped; any other
// numeric segment (layer indices, head indices) is left alone since it is
// load-bearing.
func FlattenWrapperSequential(key string, wrapperIndex map[string]int) string {
	segments := strings.Split(key, ".")
	out := make([]string, 0, len(segments))
	for i := 0; i < len(segments); i++ {
		seg := segments[i]
		out = append(out, seg)
		if want, ok := wrapperIndex[seg]; ok && i+1 < len(segments) {
			if idx := segments[i+1]; idx == itoa(want) {
				i++ // drop the wrapper index segment
			}
		}
	}
	return strings.Join(out, ".")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

// ToIdentifierStyle converts each dotted segment of key from snake_case to
// the identifier style this module's struct tags use, which for this
// model tree is already snake_case (the `weight:"..."` tags name fields
// in the checkpoint's own snake_case convention) — so this is the
// identity transform here, kept as its own pure function per spec.md §9's
// "keep them as three pure functions" so a future rename convention only
// touches this one function.
func ToIdentifierStyle(key string) string {
	return key
}

// replacementPairs is consumed by strings.NewReplacer the same way the
// teacher's convert.ModelConverter.Replacements() feeds
// strings.NewReplacer when rewriting tensor names during GGUF conversion.
var replacementPairs = []string{
	"self_attention", "self_attn",
	"cross_attention", "cross_attn",
	"feed_forward", "mlp",
	"time_embed", "t_embedder",
}

var keyReplacer = strings.NewReplacer(replacementPairs...)

// ApplyReplacements runs the fixed set of tensor-name rewrites a
// checkpoint exported from the reference training code needs before its
// keys match this module's field tags.
func ApplyReplacements(key string) string {
	return keyReplacer.Replace(key)
}
