package game

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/KirkDiggler/nomic/internal/models"
	"github.com/KirkDiggler/nomic/internal/services/messaging"
)

var (
	ruleTagPattern  = regexp.MustCompile(`^[a-z0-9\-_]+$`)
	ruleLinkPattern = regexp.MustCompile(`\[#([a-z0-9\-_]+)\]`)
)

// Rule locations accepted by ResolveLocation
const (
	LocationBefore = "before"
	LocationAfter  = "after"
	LocationIn     = "in"
)

// RuleTree is the hierarchical rule document. Every rule except the root
// is rendered into the rules channel, in document order, as one or more
// messages.
type RuleTree struct {
	session *Session
	rules   map[string]*models.Rule
}

// AddRuleInput contains a new rule and where to put it
type AddRuleInput struct {
	Tag string

	// Parent defaults to the root
	Parent string

	// Index among the parent's children; negative appends
	Index int

	Title   string
	Content string
	ActorID string
}

// MoveRuleInput contains a rule's new place in the tree
type MoveRuleInput struct {
	Tag     string
	Parent  string
	Index   int
	ActorID string
}

func (r *RuleTree) load(rules map[string]*models.Rule) {
	r.rules = make(map[string]*models.Rule, len(rules))
	for tag, rule := range rules {
		r.rules[tag] = rule.Clone()
	}
	if _, ok := r.rules[models.RootRuleTag]; !ok {
		r.rules[models.RootRuleTag] = models.NewRootRule()
	}
}

func (r *RuleTree) export() map[string]*models.Rule {
	out := make(map[string]*models.Rule, len(r.rules))
	for tag, rule := range r.rules {
		out[tag] = rule.Clone()
	}
	return out
}

// Get returns a copy of a rule
func (r *RuleTree) Get(tag string) (*models.Rule, error) {
	rule, err := r.get(tag)
	if err != nil {
		return nil, err
	}
	return rule.Clone(), nil
}

func (r *RuleTree) get(tag string) (*models.Rule, error) {
	rule, ok := r.rules[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRuleNotFound, tag)
	}
	return rule, nil
}

// Section returns a rule's section number, such as "2.3."
func (r *RuleTree) Section(tag string) string {
	return SectionNumber(r.rules, tag)
}

// Order lists every rule except the root in document order
func (r *RuleTree) Order() []string {
	return RuleOrder(r.rules)
}

// SectionNumber derives a rule's section number from its ancestors' child
// lists. The root has no number.
func SectionNumber(rules map[string]*models.Rule, tag string) string {
	parts := []string{}
	for steps := 0; steps <= len(rules); steps++ {
		rule, ok := rules[tag]
		if !ok || rule.IsRoot() {
			break
		}
		parent, ok := rules[rule.Parent]
		if !ok {
			break
		}
		parts = append(parts, strconv.Itoa(slices.Index(parent.Children, tag)+1)+".")
		tag = parent.Tag
	}
	slices.Reverse(parts)
	return strings.Join(parts, "")
}

// RuleOrder lists the rules in preorder, skipping the root
func RuleOrder(rules map[string]*models.Rule) []string {
	out := []string{}
	var walk func(tag string)
	walk = func(tag string) {
		rule, ok := rules[tag]
		if !ok {
			return
		}
		for _, child := range rule.Children {
			out = append(out, child)
			walk(child)
		}
	}
	walk(models.RootRuleTag)
	return out
}

// subtree lists tag and its descendants in preorder
func (r *RuleTree) subtree(tag string) []string {
	out := []string{tag}
	rule := r.rules[tag]
	for _, child := range rule.Children {
		out = append(out, r.subtree(child)...)
	}
	return out
}

// isWithin reports whether tag is ancestor or one of its descendants
func (r *RuleTree) isWithin(tag, ancestor string) bool {
	for steps := 0; steps <= len(r.rules); steps++ {
		if tag == ancestor {
			return true
		}
		rule, ok := r.rules[tag]
		if !ok || rule.IsRoot() {
			return false
		}
		tag = rule.Parent
	}
	return false
}

func (r *RuleTree) position(tag string) int {
	return slices.Index(r.Order(), tag)
}

// referrers lists rules whose content links to any of the tags
func (r *RuleTree) referrers(tags []string) []string {
	out := []string{}
	for _, tag := range r.Order() {
		for _, match := range ruleLinkPattern.FindAllStringSubmatch(r.rules[tag].Content, -1) {
			if slices.Contains(tags, match[1]) {
				out = append(out, tag)
				break
			}
		}
	}
	return out
}

func validateRuleTag(tag string) error {
	if !ruleTagPattern.MatchString(tag) {
		return fmt.Errorf("%w: %q", ErrInvalidRuleTag, tag)
	}
	return nil
}

// ResolveLocation turns "before tag", "after tag" or "in tag" into a parent
// and an index for Add and Move
func (r *RuleTree) ResolveLocation(where, tag string) (string, int, error) {
	rule, err := r.get(tag)
	if err != nil {
		return "", 0, err
	}

	switch strings.ToLower(where) {
	case LocationIn:
		return rule.Tag, -1, nil
	case LocationBefore, LocationAfter:
		if rule.IsRoot() {
			return "", 0, ErrRootRule
		}
		idx := slices.Index(r.rules[rule.Parent].Children, rule.Tag)
		if strings.ToLower(where) == LocationAfter {
			idx++
		}
		return rule.Parent, idx, nil
	}
	return "", 0, fmt.Errorf("%w: %q", ErrInvalidPosition, where)
}

// Add inserts a new rule and posts it
func (r *RuleTree) Add(ctx context.Context, g *Guard, input *AddRuleInput) (*models.Rule, error) {
	if err := r.session.check(g); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	tag := strings.ToLower(strings.TrimSpace(input.Tag))
	if err := validateRuleTag(tag); err != nil {
		return nil, err
	}
	if _, ok := r.rules[tag]; ok {
		return nil, fmt.Errorf("%w: %q", ErrRuleTagInUse, tag)
	}
	parentTag := input.Parent
	if parentTag == "" {
		parentTag = models.RootRuleTag
	}
	parent, err := r.get(parentTag)
	if err != nil {
		return nil, err
	}
	index := input.Index
	if index < 0 {
		index = len(parent.Children)
	}
	if index > len(parent.Children) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPosition, input.Index)
	}

	rule := &models.Rule{
		Tag:        tag,
		Title:      strings.TrimSpace(input.Title),
		Content:    input.Content,
		Parent:     parent.Tag,
		Children:   []string{},
		MessageIDs: []string{},
	}
	r.rules[tag] = rule
	parent.Children = slices.Insert(parent.Children, index, tag)
	r.session.touch()
	r.session.record(ctx, models.LogKindRule, input.ActorID, "added rule %s %s (%s)", r.Section(tag), rule.Title, tag)

	if err := r.repost(ctx, r.position(tag)); err != nil {
		return rule.Clone(), err
	}
	return rule.Clone(), nil
}

// Move detaches a rule, with its subtree, and attaches it under a new
// parent. Index is a position in the parent's children before the move.
func (r *RuleTree) Move(ctx context.Context, g *Guard, input *MoveRuleInput) error {
	if err := r.session.check(g); err != nil {
		return err
	}
	if input == nil {
		return errors.New("input cannot be nil")
	}
	rule, err := r.get(input.Tag)
	if err != nil {
		return err
	}
	if rule.IsRoot() {
		return ErrRootRule
	}
	parentTag := input.Parent
	if parentTag == "" {
		parentTag = models.RootRuleTag
	}
	parent, err := r.get(parentTag)
	if err != nil {
		return err
	}
	if r.isWithin(parent.Tag, rule.Tag) {
		return fmt.Errorf("%w: %s into %s", ErrRuleCycle, rule.Tag, parent.Tag)
	}

	oldParent := r.rules[rule.Parent]
	oldIndex := slices.Index(oldParent.Children, rule.Tag)
	index := input.Index
	if index < 0 {
		index = len(parent.Children)
	}
	if index > len(parent.Children) {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, input.Index)
	}
	if parent == oldParent && oldIndex < index {
		index--
	}
	if parent == oldParent && oldIndex == index {
		return nil
	}

	oldPos := r.position(rule.Tag)
	oldParent.Children = slices.Delete(oldParent.Children, oldIndex, oldIndex+1)
	parent.Children = slices.Insert(parent.Children, index, rule.Tag)
	rule.Parent = parent.Tag
	r.session.touch()
	r.session.record(ctx, models.LogKindRule, input.ActorID, "moved rule %s to %s", rule.Tag, r.Section(rule.Tag))

	return r.repost(ctx, min(oldPos, r.position(rule.Tag)))
}

// Retag renames a rule's tag and rewrites every [#tag] reference to it
func (r *RuleTree) Retag(ctx context.Context, g *Guard, tag, newTag, actorID string) error {
	if err := r.session.check(g); err != nil {
		return err
	}
	rule, err := r.get(tag)
	if err != nil {
		return err
	}
	if rule.IsRoot() {
		return ErrRootRule
	}
	newTag = strings.ToLower(strings.TrimSpace(newTag))
	if err := validateRuleTag(newTag); err != nil {
		return err
	}
	if newTag == rule.Tag {
		return nil
	}
	if _, ok := r.rules[newTag]; ok {
		return fmt.Errorf("%w: %q", ErrRuleTagInUse, newTag)
	}

	old := rule.Tag
	parent := r.rules[rule.Parent]
	parent.Children[slices.Index(parent.Children, old)] = newTag
	for _, child := range rule.Children {
		r.rules[child].Parent = newTag
	}
	delete(r.rules, old)
	rule.Tag = newTag
	r.rules[newTag] = rule

	changed := []string{newTag}
	oldRef, newRef := "[#"+old+"]", "[#"+newTag+"]"
	for _, other := range r.rules {
		if strings.Contains(other.Content, oldRef) {
			other.Content = strings.ReplaceAll(other.Content, oldRef, newRef)
			changed = append(changed, other.Tag)
		}
	}
	r.session.touch()
	r.session.record(ctx, models.LogKindRule, actorID, "changed the tag of rule %s from %s to %s", r.Section(newTag), old, newTag)

	return r.refresh(ctx, changed, true)
}

// Retitle changes a rule's title
func (r *RuleTree) Retitle(ctx context.Context, g *Guard, tag, title, actorID string) error {
	if err := r.session.check(g); err != nil {
		return err
	}
	rule, err := r.get(tag)
	if err != nil {
		return err
	}
	if rule.IsRoot() {
		return ErrRootRule
	}
	title = strings.TrimSpace(title)
	if title == rule.Title {
		return nil
	}

	rule.Title = title
	r.session.touch()
	r.session.record(ctx, models.LogKindRule, actorID, "retitled rule %s to %s", r.Section(rule.Tag), title)

	return r.refresh(ctx, append([]string{rule.Tag}, r.referrers([]string{rule.Tag})...), true)
}

// SetContent replaces a rule's text
func (r *RuleTree) SetContent(ctx context.Context, g *Guard, tag, content, actorID string) error {
	if err := r.session.check(g); err != nil {
		return err
	}
	rule, err := r.get(tag)
	if err != nil {
		return err
	}
	if rule.IsRoot() {
		return ErrRootRule
	}
	if content == rule.Content {
		return nil
	}

	rule.Content = content
	r.session.touch()
	r.session.record(ctx, models.LogKindRule, actorID, "edited rule %s %s", r.Section(rule.Tag), rule.Title)

	return r.refresh(ctx, []string{rule.Tag}, true)
}

// Remove deletes a rule and all of its descendants along with their messages
func (r *RuleTree) Remove(ctx context.Context, g *Guard, tag, actorID string) error {
	if err := r.session.check(g); err != nil {
		return err
	}
	rule, err := r.get(tag)
	if err != nil {
		return err
	}
	if rule.IsRoot() {
		return ErrRootRule
	}

	pos := r.position(rule.Tag)
	section := r.Section(rule.Tag)
	removed := r.subtree(rule.Tag)
	stale := []string{}
	for _, t := range removed {
		stale = append(stale, r.rules[t].MessageIDs...)
	}

	parent := r.rules[rule.Parent]
	parent.Children = slices.DeleteFunc(parent.Children, func(c string) bool { return c == rule.Tag })
	for _, t := range removed {
		delete(r.rules, t)
	}
	r.session.touch()
	r.session.record(ctx, models.LogKindRule, actorID, "removed rule %s %s (%s) and %d subrules", section, rule.Title, rule.Tag, len(removed)-1)

	channelID := r.session.channels.Rules
	if channelID == "" {
		return nil
	}
	if len(stale) > 0 {
		err := r.session.chat.BulkDeleteMessages(ctx, &messaging.BulkDeleteMessagesInput{
			ChannelID:  channelID,
			MessageIDs: stale,
		})
		if err != nil {
			return fmt.Errorf("failed to delete rule messages: %w", err)
		}
	}

	// everything after the removed rules is renumbered
	following := r.Order()[pos:]
	return r.refresh(ctx, append(following, r.referrers(append(removed, following...))...), true)
}

// Refresh brings the messages of the given rules up to date in place.
// A rule whose message count changed or whose message is missing escalates
// to reposting from that rule onward.
func (r *RuleTree) Refresh(ctx context.Context, g *Guard, tags ...string) error {
	if err := r.session.check(g); err != nil {
		return err
	}
	for _, tag := range tags {
		if _, err := r.get(tag); err != nil {
			return err
		}
	}
	return r.refresh(ctx, tags, true)
}

// RepostAll deletes and reposts every rule message
func (r *RuleTree) RepostAll(ctx context.Context, g *Guard) error {
	if err := r.session.check(g); err != nil {
		return err
	}
	if len(r.Order()) == 0 {
		return nil
	}
	return r.repost(ctx, 0)
}

func (r *RuleTree) forgetMessages() {
	for _, rule := range r.rules {
		rule.MessageIDs = []string{}
	}
}

func (r *RuleTree) refresh(ctx context.Context, tags []string, mayRepost bool) error {
	channelID := r.session.channels.Rules
	if channelID == "" {
		return nil
	}

	for _, tag := range r.Order() {
		if !slices.Contains(tags, tag) {
			continue
		}

		err := r.refreshOne(ctx, channelID, r.rules[tag])
		if errors.Is(err, messaging.ErrMessageNotFound) && mayRepost {
			return r.repost(ctx, r.position(tag))
		}
		if err != nil {
			return fmt.Errorf("failed to refresh rule %s: %w", tag, err)
		}
	}
	return nil
}

func (r *RuleTree) refreshOne(ctx context.Context, channelID string, rule *models.Rule) error {
	contents := r.render(rule)
	if len(contents) != len(rule.MessageIDs) {
		return messaging.ErrMessageNotFound
	}

	for i, content := range contents {
		fetched, err := r.session.chat.FetchMessage(ctx, &messaging.FetchMessageInput{
			ChannelID: channelID,
			MessageID: rule.MessageIDs[i],
		})
		if err != nil {
			return err
		}
		if fetched.Message.Content.Equal(content) {
			continue
		}
		err = r.session.chat.EditMessage(ctx, &messaging.EditMessageInput{
			ChannelID: channelID,
			MessageID: rule.MessageIDs[i],
			Content:   content,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// repost deletes the messages of every rule from document position from
// onward and posts them again, then refreshes earlier rules linking to them
func (r *RuleTree) repost(ctx context.Context, from int) error {
	channelID := r.session.channels.Rules
	order := r.Order()
	if channelID == "" || from < 0 || from >= len(order) {
		return nil
	}
	suffix := order[from:]

	stale := []string{}
	for _, tag := range suffix {
		stale = append(stale, r.rules[tag].MessageIDs...)
	}
	if len(stale) > 0 {
		err := r.session.chat.BulkDeleteMessages(ctx, &messaging.BulkDeleteMessagesInput{
			ChannelID:  channelID,
			MessageIDs: stale,
		})
		if err != nil {
			return fmt.Errorf("failed to delete rule messages: %w", err)
		}
	}

	for _, tag := range suffix {
		rule := r.rules[tag]
		rule.MessageIDs = []string{}
		r.session.touch()
		for range r.render(rule) {
			out, err := r.session.chat.SendMessage(ctx, &messaging.SendMessageInput{
				ChannelID: channelID,
				Content:   rulePlaceholder(),
			})
			if err != nil {
				return fmt.Errorf("failed to post rule %s: %w", tag, err)
			}
			rule.MessageIDs = append(rule.MessageIDs, out.Message.ID)
		}
	}

	if err := r.refresh(ctx, suffix, false); err != nil {
		return err
	}

	earlier := []string{}
	for _, tag := range r.referrers(suffix) {
		if !slices.Contains(suffix, tag) {
			earlier = append(earlier, tag)
		}
	}
	return r.refresh(ctx, earlier, true)
}

func rulePlaceholder() messaging.Content {
	return messaging.Content{Embed: &messaging.Embed{
		Title: "Preparing rule...",
		Color: ColorTemporary,
	}}
}

// render produces one message per chunk of the rule's content
func (r *RuleTree) render(rule *models.Rule) []messaging.Content {
	title := strings.TrimSpace(r.Section(rule.Tag) + " " + rule.Title)
	chunks := splitText(r.linkify(rule.Content), messaging.MaxMessageLength)

	out := make([]messaging.Content, 0, len(chunks))
	for i, chunk := range chunks {
		t := title
		if len(chunks) > 1 {
			t += fmt.Sprintf(" (%d/%d)", i+1, len(chunks))
		}
		out = append(out, messaging.Content{Embed: &messaging.Embed{
			Title:       t,
			Description: chunk,
			Color:       ColorInfo,
			Footer:      rule.Tag,
		}})
	}
	return out
}

// linkify replaces [#tag] references with the referenced rule's bold title,
// linked to its first message when it has one. Unknown tags are left alone.
func (r *RuleTree) linkify(content string) string {
	return ruleLinkPattern.ReplaceAllStringFunc(content, func(ref string) string {
		tag := ruleLinkPattern.FindStringSubmatch(ref)[1]
		rule, ok := r.rules[tag]
		if !ok || rule.IsRoot() {
			return ref
		}
		text := fmt.Sprintf("**%s**", strings.TrimSpace(r.Section(tag)+" "+rule.Title))
		if len(rule.MessageIDs) == 0 || r.session.channels.Rules == "" {
			return text
		}
		return fmt.Sprintf("[%s](%s)", text, messageLink(r.session.guildID, r.session.channels.Rules, rule.MessageIDs[0]))
	})
}
