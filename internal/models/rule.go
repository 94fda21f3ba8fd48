package models

// RootRuleTag is the tag of the rule tree's single root node
const RootRuleTag = "root"

// Rule is one section of the hierarchical rule document
type Rule struct {
	// Tag uniquely identifies the rule and is used in [#tag] references
	Tag string `json:"tag" yaml:"tag"`

	// Title is the human-friendly section title
	Title string `json:"title" yaml:"title"`

	// Content is the Markdown body of the section
	Content string `json:"content" yaml:"content"`

	// Parent is the parent's tag; empty only for the root
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`

	// Children lists child tags in document order
	Children []string `json:"children" yaml:"children"`

	// MessageIDs are the rendered messages in the rules channel, in order
	MessageIDs []string `json:"message_ids" yaml:"message_ids"`
}

// IsRoot reports whether this is the root of the tree
func (r *Rule) IsRoot() bool {
	return r.Tag == RootRuleTag
}

// Clone returns a deep copy
func (r *Rule) Clone() *Rule {
	if r == nil {
		return nil
	}
	out := *r
	out.Children = append([]string{}, r.Children...)
	out.MessageIDs = append([]string{}, r.MessageIDs...)
	return &out
}

// NewRootRule creates the root of an empty rule tree
func NewRootRule() *Rule {
	return &Rule{
		Tag:        RootRuleTag,
		Children:   []string{},
		MessageIDs: []string{},
	}
}
