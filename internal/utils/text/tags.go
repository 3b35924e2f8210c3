package text

import "strings"

// tagVocabulary is the fixed set of domain terms matched against localized
// titles when deriving article tags.
var tagVocabulary = []string{
	"Bitcoin", "Ethereum", "BTC", "ETH", "DeFi",
	"NFT", "Crypto", "Blockchain", "Web3", "Altcoin",
}

// ExtractTags returns a comma-joined list of vocabulary keywords found in the
// title, preserving the vocabulary's canonical casing. Matching is
// case-insensitive substring containment.
func ExtractTags(title string) string {
	lower := strings.ToLower(title)
	var found []string
	for _, keyword := range tagVocabulary {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			found = append(found, keyword)
		}
	}
	return strings.Join(found, ", ")
}
