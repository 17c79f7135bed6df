package dialect

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

type (
	// StandardConnection holds connection settings supplied as discrete values.
	// Opt1 and Opt2 are dialect specific (e.g. integrated security for mssql,
	// sslmode for postgres).
	StandardConnection struct {
		Database string
		Host     string
		Port     string
		User     string
		Password string
		Opt1     string
		Opt2     string
	}

	// ConnectionInfo is the normalized form of a connection consumed by DSN.
	ConnectionInfo struct {
		Database           string
		Host               string
		Port               int
		User               string
		Password           string
		IntegratedSecurity bool
		Params             map[string]string
	}

	// [user:password@]server\database
	mssqlCompact struct {
		Credentials *mssqlCredentials `parser:"( @@ At )?"`
		Server      string            `parser:"@Word"`
		Database    string            `parser:"Backslash @Word"`
	}

	mssqlCredentials struct {
		User     string `parser:"@Word"`
		Password string `parser:"Colon @Word"`
	}

	// user/password@[host:port/]sid
	oracleCompact struct {
		User     string         `parser:"@Word Slash"`
		Password string         `parser:"@Word At"`
		Address  *oracleAddress `parser:"( @@ Slash )?"`
		SID      string         `parser:"@Word"`
	}

	oracleAddress struct {
		Host string `parser:"@Word"`
		Port string `parser:"Colon @Word"`
	}

	// [user[:password]@]host[:port][/database]
	hostCompact struct {
		Credentials *hostCredentials `parser:"( @@ At )?"`
		Host        string           `parser:"@Word"`
		Port        string           `parser:"( Colon @Word )?"`
		Database    string           `parser:"( Slash @Word )?"`
	}

	hostCredentials struct {
		User     string `parser:"@Word"`
		Password string `parser:"( Colon @Word )?"`
	}
)

var (
	connectionLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "At", Pattern: `@`},
		{Name: "Colon", Pattern: `:`},
		{Name: "Slash", Pattern: `/`},
		{Name: "Backslash", Pattern: `\\`},
		{Name: "Word", Pattern: `[^@:/\\\s]+`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	mssqlParser  = buildConnectionParser[mssqlCompact]()
	oracleParser = buildConnectionParser[oracleCompact]()
	hostParser   = buildConnectionParser[hostCompact]()
)

func buildConnectionParser[T any]() *participle.Parser[T] {
	return participle.MustBuild[T](
		participle.Lexer(connectionLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(4),
	)
}

func parseCompact[T any](p *participle.Parser[T], dialect, input string) (*T, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.Errorf("empty %s connection information", dialect)
	}

	out, err := p.ParseString("", input)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s connection information", dialect)
	}

	return out, nil
}

// parseHostCompact handles the [user[:password]@]host[:port][/database] form shared
// by several dialects.
func parseHostCompact(dialect, input string, defaultPort int) (ConnectionInfo, error) {
	c, err := parseCompact(hostParser, dialect, input)
	if err != nil {
		return ConnectionInfo{}, err
	}

	port, err := parsePort(c.Port, defaultPort)
	if err != nil {
		return ConnectionInfo{}, err
	}

	info := ConnectionInfo{Host: c.Host, Port: port, Database: c.Database}
	if c.Credentials != nil {
		info.User = c.Credentials.User
		info.Password = c.Credentials.Password
	}

	return info, nil
}

func parsePort(value string, defaultPort int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultPort, nil
	}

	port, err := strconv.Atoi(value)
	if err != nil || port <= 0 || port > 65535 {
		return 0, errors.Errorf("invalid port %q", value)
	}

	return port, nil
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.Errorf("%s is required", name)
	}

	return nil
}
