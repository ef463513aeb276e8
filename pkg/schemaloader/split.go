package schemaloader

import "strings"

// splitStatements splits a SQL script into executable statements. It
// understands enough SQL lexing not to split inside string literals,
// quoted identifiers, comments, or PostgreSQL dollar-quoted bodies,
// which covers what structure dumps and seed files contain in practice.
func splitStatements(script string) []string {
	var (
		statements []string
		b          strings.Builder
	)

	flush := func() {
		stmt := strings.TrimSpace(b.String())
		b.Reset()
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}

	i, n := 0, len(script)
	for i < n {
		c := script[i]
		switch {
		case c == ';':
			flush()
			i++

		case c == '\'' || c == '"' || c == '`':
			quote := c
			b.WriteByte(c)
			i++
			for i < n {
				b.WriteByte(script[i])
				if script[i] == quote {
					// A doubled quote is an escape, stay inside.
					if i+1 < n && script[i+1] == quote {
						i++
						b.WriteByte(script[i])
						i++
						continue
					}
					i++
					break
				}
				if script[i] == '\\' && i+1 < n {
					i++
					b.WriteByte(script[i])
				}
				i++
			}

		case c == '-' && i+1 < n && script[i+1] == '-':
			for i < n && script[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < n && script[i+1] == '*':
			i += 2
			for i+1 < n && !(script[i] == '*' && script[i+1] == '/') {
				i++
			}
			i += 2

		case c == '$':
			tag, ok := dollarTag(script[i:])
			if !ok {
				b.WriteByte(c)
				i++
				continue
			}
			body := script[i+len(tag):]
			end := strings.Index(body, tag)
			if end < 0 {
				b.WriteString(script[i:])
				i = n
				continue
			}
			b.WriteString(script[i : i+len(tag)+end+len(tag)])
			i += len(tag) + end + len(tag)

		default:
			b.WriteByte(c)
			i++
		}
	}
	flush()
	return statements
}

// dollarTag reports the dollar-quote tag ("$$", "$body$") opening s.
func dollarTag(s string) (string, bool) {
	if len(s) < 2 || s[0] != '$' {
		return "", false
	}
	for j := 1; j < len(s); j++ {
		c := s[j]
		if c == '$' {
			return s[:j+1], true
		}
		if !isTagChar(c) {
			return "", false
		}
	}
	return "", false
}

func isTagChar(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
