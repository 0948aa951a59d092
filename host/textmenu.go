package host

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tackle-labs/tacklebox"
)

// NodeKind identifies one rendered child of a TextMenu.
type NodeKind string

const (
	NodeMenu      NodeKind = "menu"
	NodeItem      NodeKind = "item"
	NodeSeparator NodeKind = "separator"
	NodeLabel     NodeKind = "label"
)

// Node is one rendered child of a TextMenu. Menu is set for NodeMenu, Do
// for NodeItem.
type Node struct {
	Kind    NodeKind
	Title   string
	Icon    string
	Enabled bool
	Menu    *TextMenu
	Do      func()
}

// TextMenu is an in-memory menu node. It records children in call order
// and renders as an indented tree, which makes it both the CLI's menu
// printer and the test double for a real widget toolkit.
type TextMenu struct {
	title    string
	children []Node
}

// Title returns the menu's display title.
func (m *TextMenu) Title() string { return m.title }

// Children returns the menu's children in append order.
func (m *TextMenu) Children() []Node {
	out := make([]Node, len(m.children))
	copy(out, m.children)
	return out
}

// AddMenu implements tacklebox.Menu.
func (m *TextMenu) AddMenu(title string) tacklebox.Menu {
	child := &TextMenu{title: title}
	m.children = append(m.children, Node{Kind: NodeMenu, Title: title, Menu: child})
	return child
}

// AddItem implements tacklebox.Menu.
func (m *TextMenu) AddItem(item tacklebox.Item) {
	m.children = append(m.children, Node{
		Kind:    NodeItem,
		Title:   item.Title,
		Icon:    item.Icon,
		Enabled: item.Enabled,
		Do:      item.Do,
	})
}

// AddSeparator implements tacklebox.Menu.
func (m *TextMenu) AddSeparator() {
	m.children = append(m.children, Node{Kind: NodeSeparator})
}

// AddLabel implements tacklebox.Menu.
func (m *TextMenu) AddLabel(text string) {
	m.children = append(m.children, Node{Kind: NodeLabel, Title: text})
}

// String renders the menu as an indented tree.
func (m *TextMenu) String() string {
	var b strings.Builder
	b.WriteString(m.title + "\n")
	m.render(&b, 1)
	return b.String()
}

func (m *TextMenu) render(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, child := range m.children {
		switch child.Kind {
		case NodeMenu:
			fmt.Fprintf(b, "%s%s/\n", indent, child.Title)
			child.Menu.render(b, depth+1)
		case NodeItem:
			state := ""
			if !child.Enabled {
				state = " (disabled)"
			}
			fmt.Fprintf(b, "%s* %s%s\n", indent, child.Title, state)
		case NodeSeparator:
			fmt.Fprintf(b, "%s---\n", indent)
		case NodeLabel:
			fmt.Fprintf(b, "%s[%s]\n", indent, child.Title)
		}
	}
}

// Find walks child menus by title and returns the addressed menu, or nil.
// No segments returns the menu itself.
func (m *TextMenu) Find(segments ...string) *TextMenu {
	current := m
	for _, segment := range segments {
		var next *TextMenu
		for _, child := range current.children {
			if child.Kind == NodeMenu && child.Title == segment {
				next = child.Menu
				break
			}
		}
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}

// Item returns the first item child with the given title, or nil.
func (m *TextMenu) Item(title string) *Node {
	for i := range m.children {
		if m.children[i].Kind == NodeItem && m.children[i].Title == title {
			return &m.children[i]
		}
	}
	return nil
}

// TextHost is an in-memory tacklebox.MenuHost holding one root menu per
// title.
type TextHost struct {
	mu    sync.Mutex
	roots map[string]*TextMenu
	order []string
}

// NewTextHost creates an empty text host.
func NewTextHost() *TextHost {
	return &TextHost{roots: make(map[string]*TextMenu)}
}

// ReplaceMenu implements tacklebox.MenuHost: the previous root with this
// title is dropped and a fresh one returned.
func (h *TextHost) ReplaceMenu(title string) tacklebox.Menu {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.roots[title]; !exists {
		h.order = append(h.order, title)
	}
	root := &TextMenu{title: title}
	h.roots[title] = root
	return root
}

// Menu returns the current root for title, or nil.
func (h *TextHost) Menu(title string) *TextMenu {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.roots[title]
}

// String renders every root in first-created order.
func (h *TextHost) String() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var b strings.Builder
	for _, title := range h.order {
		b.WriteString(h.roots[title].String())
	}
	return b.String()
}

var (
	_ tacklebox.MenuHost = (*TextHost)(nil)
	_ tacklebox.Menu     = (*TextMenu)(nil)
)
