package naming

import (
	"log/slog"
	"strings"
	"sync/atomic"
	"unicode"
)

// ForeignKeySuffix is appended to a relationship's logical name to form the
// storage column holding the referenced key.
const ForeignKeySuffix = "_id"

// Namer applies the naming rules with optional pluralization overrides.
type Namer struct {
	config Config
	logger *slog.Logger
}

var defaultNamer atomic.Pointer[Namer]

// New creates a Namer with the given configuration
func New(cfg Config, logger *slog.Logger) *Namer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Namer{
		config: cfg,
		logger: logger,
	}
}

// Default returns the process namer. It uses DefaultConfig until SetDefault is called.
func Default() *Namer {
	if n := defaultNamer.Load(); n != nil {
		return n
	}
	n := New(DefaultConfig(), nil)
	defaultNamer.CompareAndSwap(nil, n)
	return defaultNamer.Load()
}

// SetDefault replaces the process namer. Call it during startup, before any
// model schema is requested.
func SetDefault(n *Namer) {
	if n == nil {
		return
	}
	defaultNamer.Store(n)
}

// EntityName converts a Go type name to its entity (table) name.
// Example: "Galaxy" -> "galaxies", "StarSystem" -> "star_systems"
func (n *Namer) EntityName(typeName string) string {
	snake := ToSnakeCase(typeName)
	if snake == "" {
		return ""
	}
	tokens := strings.Split(snake, "_")
	last := len(tokens) - 1
	tokens[last] = n.Pluralize(tokens[last])
	name := strings.Join(tokens, "_")
	n.logger.Debug("derived entity name", slog.String("type", typeName), slog.String("entity", name))
	return name
}

// EntityName converts a Go type name using the default namer.
func EntityName(typeName string) string {
	return Default().EntityName(typeName)
}

// ForeignKeyColumn returns the storage column for a relationship.
// Example: "galaxy" -> "galaxy_id"
func ForeignKeyColumn(relationship string) string {
	return relationship + ForeignKeySuffix
}

// RelationshipName strips the foreign-key suffix from a storage column.
// Example: "galaxy_id" -> "galaxy". Columns without the suffix are returned unchanged.
func RelationshipName(column string) string {
	if len(column) > len(ForeignKeySuffix) && strings.HasSuffix(column, ForeignKeySuffix) {
		return column[:len(column)-len(ForeignKeySuffix)]
	}
	return column
}

// JoinAlias is the projected column alias used for a joined entity's field.
// Example: ("galaxies", "name") -> "galaxies_name"
func JoinAlias(entity, field string) string {
	return entity + "_" + field
}

// JoinPrefix is the alias prefix shared by every projected field of a joined entity.
func JoinPrefix(entity string) string {
	return entity + "_"
}

// ToSnakeCase converts a Go identifier to snake_case.
// Runs of capitals are kept together: "GalaxyID" -> "galaxy_id", "HTTPServer" -> "http_server".
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
