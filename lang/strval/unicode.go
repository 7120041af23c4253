package strval

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	lowerCaser = cases.Lower(language.Und)
	upperCaser = cases.Upper(language.Und)
	titleCaser = cases.Title(language.Und)
	foldCaser  = cases.Fold()
)

// ToLower maps s to lowercase, including the multi-codepoint special cases
// (e.g. the Greek final sigma) that golang.org/x/text/cases handles and a
// hand-rolled unicode.ToLower loop over runes would miss.
func ToLower(s String) String { return New(lowerCaser.String(s.Go())) }

// ToUpper maps s to uppercase (e.g. German ß -> "SS").
func ToUpper(s String) String { return New(upperCaser.String(s.Go())) }

// ToTitle applies title-case word breaking and mapping.
func ToTitle(s String) String { return New(titleCaser.String(s.Go())) }

// Fold applies Unicode case folding, for case-insensitive comparison.
func Fold(s String) String { return New(foldCaser.String(s.Go())) }

// Normalize rewrites s to Unicode Normalization Form C (canonical
// decomposition followed by canonical composition), per spec.md §4.4.
func Normalize(s String) String { return New(norm.NFC.String(s.Go())) }

// WildcardOptions configures Match.
type WildcardOptions struct {
	FilenameMode  bool // '*' and '?' don't cross path separators
	BackslashEsc  bool // '\' escapes the following character
	CaseSensitive bool
}

// Match reports whether s matches the glob pattern pat ('*' matches any run
// of characters, '?' matches exactly one), honoring the given options.
func Match(pat, s String, opts WildcardOptions) bool {
	p, str := pat.Go(), s.Go()
	if !opts.CaseSensitive {
		p, str = strings.ToLower(p), strings.ToLower(str)
	}
	return matchHere([]rune(p), []rune(str), opts)
}

func matchHere(p, s []rune, opts WildcardOptions) bool {
	for len(p) > 0 {
		switch {
		case opts.BackslashEsc && p[0] == '\\' && len(p) > 1:
			if len(s) == 0 || s[0] != p[1] {
				return false
			}
			p, s = p[2:], s[1:]

		case p[0] == '*':
			// collapse consecutive stars
			for len(p) > 1 && p[1] == '*' {
				p = p[1:]
			}
			if len(p) == 1 {
				if opts.FilenameMode {
					return !containsSep(s)
				}
				return true
			}
			for i := 0; i <= len(s); i++ {
				if opts.FilenameMode && i > 0 && s[i-1] == '/' {
					break
				}
				if matchHere(p[1:], s[i:], opts) {
					return true
				}
			}
			return false

		case p[0] == '?':
			if len(s) == 0 || (opts.FilenameMode && s[0] == '/') {
				return false
			}
			p, s = p[1:], s[1:]

		default:
			if len(s) == 0 || s[0] != p[0] {
				return false
			}
			p, s = p[1:], s[1:]
		}
	}
	return len(s) == 0
}

func containsSep(rs []rune) bool {
	for _, r := range rs {
		if r == '/' {
			return true
		}
	}
	return false
}

// Format implements the printf subset required by spec.md §4.4: %s %S %d %u
// %x %X %c.
func Format(format String, args []any) (String, error) {
	f := format.Go()
	var sb strings.Builder
	ai := 0
	next := func() (any, error) {
		if ai >= len(args) {
			return nil, fmt.Errorf("format: not enough arguments for %q", f)
		}
		v := args[ai]
		ai++
		return v, nil
	}
	for i := 0; i < len(f); i++ {
		c := f[i]
		if c != '%' || i == len(f)-1 {
			sb.WriteByte(c)
			continue
		}
		i++
		verb := f[i]
		arg, err := next()
		if err != nil && verb != '%' {
			return String{}, err
		}
		switch verb {
		case '%':
			sb.WriteByte('%')
			if err == nil {
				ai-- // %% consumes no argument
			}
		case 's':
			sb.WriteString(fmt.Sprint(arg))
		case 'S':
			sb.WriteString(strings.ToUpper(fmt.Sprint(arg)))
		case 'd':
			sb.WriteString(fmt.Sprintf("%d", arg))
		case 'u':
			sb.WriteString(fmt.Sprintf("%d", arg))
		case 'x':
			sb.WriteString(fmt.Sprintf("%x", arg))
		case 'X':
			sb.WriteString(fmt.Sprintf("%X", arg))
		case 'c':
			sb.WriteString(fmt.Sprintf("%c", arg))
		default:
			return String{}, fmt.Errorf("format: unsupported verb %%%c", verb)
		}
	}
	return New(sb.String()), nil
}

// CEscapeAdd backslash-escapes control characters, quotes and backslashes so
// the result is safe to embed in a C-style quoted literal.
func CEscapeAdd(s String) String {
	var sb strings.Builder
	for _, r := range s.Go() {
		switch r {
		case '\\', '"':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\x%02x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	return New(sb.String())
}

// CEscapeStrip reverses CEscapeAdd.
func CEscapeStrip(s String) (String, error) {
	src := s.Go()
	var sb strings.Builder
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c != '\\' || i == len(src)-1 {
			sb.WriteByte(c)
			continue
		}
		i++
		switch src[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '\\', '"':
			sb.WriteByte(src[i])
		case 'x':
			if i+2 >= len(src) {
				return String{}, fmt.Errorf("cescape: truncated \\x escape")
			}
			v, err := strconv.ParseUint(src[i+1:i+3], 16, 8)
			if err != nil {
				return String{}, fmt.Errorf("cescape: invalid \\x escape: %w", err)
			}
			sb.WriteByte(byte(v))
			i += 2
		default:
			return String{}, fmt.Errorf("cescape: unknown escape \\%c", src[i])
		}
	}
	return New(sb.String()), nil
}

// HTMLEncode escapes the characters that are special in HTML text.
func HTMLEncode(s String) String {
	r := strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;")
	return New(r.Replace(s.Go()))
}

// HTMLDecode reverses HTMLEncode for the same fixed entity set.
func HTMLDecode(s String) String {
	r := strings.NewReplacer(
		"&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'")
	return New(r.Replace(s.Go()))
}

// URLEncode percent-encodes s for use in a URL query component.
func URLEncode(s String) String { return New(url.QueryEscape(s.Go())) }

// URLDecode reverses URLEncode.
func URLDecode(s String) (String, error) {
	v, err := url.QueryUnescape(s.Go())
	if err != nil {
		return String{}, err
	}
	return New(v), nil
}

// Rot13 applies the ROT13 substitution cipher to ASCII letters.
func Rot13(s String) String {
	rot := func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+13)%26
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+13)%26
		}
		return r
	}
	return New(strings.Map(rot, s.Go()))
}

// RegexEscape escapes the characters that are special to a regular
// expression engine so s can be used as a literal pattern fragment.
func RegexEscape(s String) String {
	const special = `\.+*?()|[]{}^$`
	var sb strings.Builder
	for _, r := range s.Go() {
		if strings.ContainsRune(special, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return New(sb.String())
}
