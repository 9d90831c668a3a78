package verification

// LinkKind tags what the token path segment carried.
type LinkKind int

const (
	LinkSecret LinkKind = iota + 1
	LinkSentinel
)

// LinkToken is the parsed token segment of a flow URL.
type LinkToken struct {
	Kind   LinkKind
	secret string
}

// ParseLinkToken classifies segment. Only an exact match with the sentinel is a sentinel.
func ParseLinkToken(segment, sentinel string) LinkToken {
	if segment == sentinel {
		return LinkToken{Kind: LinkSentinel}
	}
	return LinkToken{Kind: LinkSecret, secret: segment}
}

// IsSentinel reports whether the segment was the sentinel.
func (t LinkToken) IsSentinel() bool {
	return t.Kind == LinkSentinel
}

// Secret returns the candidate token. It is empty for sentinel links.
func (t LinkToken) Secret() string {
	return t.secret
}
