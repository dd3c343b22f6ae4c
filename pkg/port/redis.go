// Octa speaks the Redis protocol, so any Redis client can store and work on numbers. Numbers live under plain keys;
// commands working on them carry the NUM. prefix, e.g.
//
//	NUM.SET a 64      -> OK
//	NUM.DIGITS a      -> "100"
//	NUM.MUL b a a     -> OK
//	NUM.DEC b         -> "4096"

package port

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nobletooth/octa/pkg/numlist"
	"github.com/nobletooth/octa/pkg/storage"
	"github.com/nobletooth/octa/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tidwall/redcon"
)

const RedisOk = "OK"

var (
	address = flag.String("address", ":6380", "The ip:port to listen on for Redis protocol.")

	redisCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redis_commands_total",
		Help: "Total number of handled Redis commands.",
	}, []string{"command", "status" /* ok | error */})
)

// redisCommand represents a Redis command with its arguments.
type redisCommand struct {
	command string
	args    []string
}

// redisOutput conforms to a real Redis server output on non pub / sub commands.
type redisOutput struct {
	closeConnection bool     // Closes the connection if true.
	writeNil        bool     // Writes a nil value if true.
	err             *string  // Error to return if set.
	writeInt        *int     // Writes an integer value if set.
	writeBulk       []byte   // Writes a bulk string if set.
	writeArray      []string // Writes an array of bulk strings if not nil.
	writeString     string   // Writes a simple string otherwise.
}

func closeRedisConnection(msg string) redisOutput {
	return redisOutput{writeString: msg, closeConnection: true}
}

func writeRedisNil() redisOutput {
	return redisOutput{writeNil: true}
}

func writeRedisInt(i int) redisOutput {
	return redisOutput{writeInt: &i}
}

func writeRedisBool(b bool) redisOutput {
	if b {
		return writeRedisInt(1)
	}
	return writeRedisInt(0)
}

func writeRedisString(s string) redisOutput {
	return redisOutput{writeString: s}
}

func writeRedisBulk(b []byte) redisOutput {
	if b == nil {
		b = []byte{}
	}
	return redisOutput{writeBulk: b}
}

func writeRedisArray(items []string) redisOutput {
	if items == nil {
		items = []string{}
	}
	return redisOutput{writeArray: items}
}

func writeRedisError(err error) redisOutput {
	msg := "ERR " + err.Error()
	return redisOutput{err: &msg}
}

// writeRedisResult returns `ok` unless `err` is set; missing keys become nil replies when `nilOnMissing` is set.
func writeRedisResult(err error, nilOnMissing bool, ok func() redisOutput) redisOutput {
	switch {
	case err == nil:
		return ok()
	case nilOnMissing && errors.Is(err, storage.ErrKeyNotFound):
		return writeRedisNil()
	default:
		return writeRedisError(err)
	}
}

func wrongArgCount(command string) redisOutput {
	return writeRedisError(fmt.Errorf("wrong number of arguments for '%s' command", strings.ToLower(command)))
}

func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("index '%s' is not an integer", arg)
	}
	return index, nil
}

func parseDigit(arg string) (numlist.Digit, error) {
	digit, err := strconv.ParseUint(arg, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a digit", arg)
	}
	return numlist.Digit(digit), nil
}

func parseDigits(args []string) ([]numlist.Digit, error) {
	digits := make([]numlist.Digit, len(args))
	for i, arg := range args {
		digit, err := parseDigit(arg)
		if err != nil {
			return nil, err
		}
		digits[i] = digit
	}
	return digits, nil
}

// commandArity is the number of arguments each command takes; negative values are minimums.
var commandArity = map[string]int{
	"PING": 0, "QUIT": 0, "DEL": -1, "KEYS": 1, "DUMP": 1, "RESTORE": -3,
	"NUM.SET": 2, "NUM.DIGITS": 1, "NUM.DEC": 1, "NUM.LEN": 1,
	"NUM.GET": 2, "NUM.PUT": 3, "NUM.INSERT": 3, "NUM.REMOVEAT": 2, "NUM.REMOVE": 2,
	"NUM.REMOVEALL": -2, "NUM.RETAINALL": -2, "NUM.CLEAR": 1,
	"NUM.INDEXOF": 2, "NUM.LASTINDEXOF": 2, "NUM.CONTAINS": -2,
	"NUM.SWAP": 3, "NUM.SORT": 2, "NUM.SHIFT": 2,
	"NUM.RANGE": 4, "NUM.TOBASE10": 2, "NUM.MUL": 3, "NUM.LOAD": 2, "NUM.SAVE": 2,
}

type redisHandler struct {
	backend *NumberBackend
}

// newRedisHandler creates a new redisHandler.
func newRedisHandler(backend *NumberBackend) (*redisHandler, error) {
	if backend == nil {
		return nil, errors.New("expected a non-nil backend")
	}
	return &redisHandler{backend: backend}, nil
}

// handle runs `cmd` and records its outcome in the redis_commands_total metric.
func (rh *redisHandler) handle(cmd redisCommand) redisOutput {
	cmd.command = strings.ToUpper(cmd.command)
	arity, known := commandArity[cmd.command]
	label := cmd.command
	var output redisOutput
	switch {
	case !known:
		label = "unknown"
		output = writeRedisError(fmt.Errorf("unknown command '%s'", cmd.command))
	case (arity >= 0 && len(cmd.args) != arity) || (arity < 0 && len(cmd.args) < -arity):
		output = wrongArgCount(cmd.command)
	default:
		output = rh.dispatch(cmd)
	}

	status := "ok"
	if output.err != nil {
		status = "error"
	}
	redisCommands.WithLabelValues(label, status).Inc()
	return output
}

// dispatch runs a known command whose argument count was already checked.
func (rh *redisHandler) dispatch(cmd redisCommand) redisOutput {
	args := cmd.args
	switch cmd.command {
	case "PING":
		return writeRedisString("PONG")
	case "QUIT":
		return closeRedisConnection(RedisOk)
	case "DEL":
		deleted, err := rh.backend.Delete(args...)
		return writeRedisResult(err, false, func() redisOutput { return writeRedisInt(deleted) })
	case "KEYS":
		keys, err := rh.backend.Keys(args[0])
		return writeRedisResult(err, false, func() redisOutput { return writeRedisArray(keys) })
	case "DUMP":
		payload, err := rh.backend.Dump(args[0])
		return writeRedisResult(err, true, func() redisOutput { return writeRedisBulk(payload) })
	case "RESTORE": // RESTORE key ttl payload [REPLACE]
		replace := false
		switch {
		case len(args) == 4 && strings.EqualFold(args[3], "REPLACE"):
			replace = true
		case len(args) != 3:
			return writeRedisError(errors.New("syntax error"))
		}
		if args[1] != "0" {
			return writeRedisError(errors.New("numbers do not expire, ttl must be 0"))
		}
		err := rh.backend.Restore(args[0], []byte(args[2]), replace)
		return writeRedisResult(err, false, func() redisOutput { return writeRedisString(RedisOk) })
	case "NUM.SET":
		err := rh.backend.SetDecimal(args[0], args[1])
		return writeRedisResult(err, false, func() redisOutput { return writeRedisString(RedisOk) })
	case "NUM.DIGITS":
		digits, err := rh.backend.Digits(args[0])
		return writeRedisResult(err, true, func() redisOutput { return writeRedisBulk([]byte(digits)) })
	case "NUM.DEC":
		decimal, err := rh.backend.Decimal(args[0])
		return writeRedisResult(err, true, func() redisOutput { return writeRedisBulk([]byte(decimal)) })
	case "NUM.LEN":
		size, err := rh.backend.Len(args[0])
		return writeRedisResult(err, false, func() redisOutput { return writeRedisInt(size) })
	case "NUM.CLEAR":
		err := rh.backend.Clear(args[0])
		return writeRedisResult(err, false, func() redisOutput { return writeRedisString(RedisOk) })
	case "NUM.GET", "NUM.REMOVEAT":
		index, err := parseIndex(args[1])
		if err != nil {
			return writeRedisError(err)
		}
		var digit numlist.Digit
		if cmd.command == "NUM.GET" {
			digit, err = rh.backend.Get(args[0], index)
		} else {
			digit, err = rh.backend.RemoveAt(args[0], index)
		}
		return writeRedisResult(err, false, func() redisOutput { return writeRedisInt(int(digit)) })
	case "NUM.PUT", "NUM.INSERT":
		index, err := parseIndex(args[1])
		if err != nil {
			return writeRedisError(err)
		}
		digit, err := parseDigit(args[2])
		if err != nil {
			return writeRedisError(err)
		}
		if cmd.command == "NUM.INSERT" {
			err := rh.backend.Insert(args[0], index, digit)
			return writeRedisResult(err, false, func() redisOutput { return writeRedisString(RedisOk) })
		}
		previous, err := rh.backend.Put(args[0], index, digit)
		return writeRedisResult(err, false, func() redisOutput { return writeRedisInt(int(previous)) })
	case "NUM.REMOVE", "NUM.INDEXOF", "NUM.LASTINDEXOF":
		digit, err := parseDigit(args[1])
		if err != nil {
			return writeRedisError(err)
		}
		switch cmd.command {
		case "NUM.REMOVE":
			removed, err := rh.backend.Remove(args[0], digit)
			return writeRedisResult(err, false, func() redisOutput { return writeRedisBool(removed) })
		case "NUM.INDEXOF":
			index, err := rh.backend.IndexOf(args[0], digit)
			return writeRedisResult(err, false, func() redisOutput { return writeRedisInt(index) })
		default:
			index, err := rh.backend.LastIndexOf(args[0], digit)
			return writeRedisResult(err, false, func() redisOutput { return writeRedisInt(index) })
		}
	case "NUM.CONTAINS", "NUM.REMOVEALL", "NUM.RETAINALL":
		digits, err := parseDigits(args[1:])
		if err != nil {
			return writeRedisError(err)
		}
		var result bool
		switch cmd.command {
		case "NUM.CONTAINS":
			result, err = rh.backend.Contains(args[0], digits...)
		case "NUM.REMOVEALL":
			result, err = rh.backend.RemoveAll(args[0], digits...)
		default:
			result, err = rh.backend.RetainAll(args[0], digits...)
		}
		return writeRedisResult(err, false, func() redisOutput { return writeRedisBool(result) })
	case "NUM.SWAP":
		i, err := parseIndex(args[1])
		if err != nil {
			return writeRedisError(err)
		}
		j, err := parseIndex(args[2])
		if err != nil {
			return writeRedisError(err)
		}
		swapped, err := rh.backend.Swap(args[0], i, j)
		return writeRedisResult(err, false, func() redisOutput { return writeRedisBool(swapped) })
	case "NUM.SORT":
		var err error
		switch strings.ToUpper(args[1]) {
		case "ASC":
			err = rh.backend.Sort(args[0], false /*descending*/)
		case "DESC":
			err = rh.backend.Sort(args[0], true /*descending*/)
		default:
			return writeRedisError(errors.New("syntax error, expected ASC or DESC"))
		}
		return writeRedisResult(err, false, func() redisOutput { return writeRedisString(RedisOk) })
	case "NUM.SHIFT":
		var err error
		switch strings.ToUpper(args[1]) {
		case "LEFT":
			err = rh.backend.Shift(args[0], true /*left*/)
		case "RIGHT":
			err = rh.backend.Shift(args[0], false /*left*/)
		default:
			return writeRedisError(errors.New("syntax error, expected LEFT or RIGHT"))
		}
		return writeRedisResult(err, false, func() redisOutput { return writeRedisString(RedisOk) })
	case "NUM.RANGE":
		from, err := parseIndex(args[2])
		if err != nil {
			return writeRedisError(err)
		}
		to, err := parseIndex(args[3])
		if err != nil {
			return writeRedisError(err)
		}
		err = rh.backend.Range(args[0], args[1], from, to)
		return writeRedisResult(err, false, func() redisOutput { return writeRedisString(RedisOk) })
	case "NUM.TOBASE10":
		err := rh.backend.ToBase10(args[0], args[1])
		return writeRedisResult(err, false, func() redisOutput { return writeRedisString(RedisOk) })
	case "NUM.MUL":
		err := rh.backend.Multiply(args[0], args[1], args[2])
		return writeRedisResult(err, false, func() redisOutput { return writeRedisString(RedisOk) })
	case "NUM.LOAD":
		err := rh.backend.Load(args[0], args[1])
		return writeRedisResult(err, false, func() redisOutput { return writeRedisString(RedisOk) })
	case "NUM.SAVE":
		err := rh.backend.Save(args[0], args[1])
		return writeRedisResult(err, false, func() redisOutput { return writeRedisString(RedisOk) })
	default:
		utils.RaiseInvariant("redis", "unhandled_known_command",
			"A command with a registered arity has no handler.", "command", cmd.command)
		return writeRedisError(fmt.Errorf("unknown command '%s'", cmd.command))
	}
}

// writeOutput sends `output` to the client.
func writeOutput(conn redcon.Conn, output redisOutput) {
	switch {
	case output.closeConnection:
		conn.WriteString(output.writeString)
		if err := conn.Close(); err != nil {
			slog.Error("Failed to close connection.", "error", err)
		}
	case output.err != nil:
		conn.WriteError(*output.err)
	case output.writeNil:
		conn.WriteNull()
	case output.writeInt != nil:
		conn.WriteInt(*output.writeInt)
	case output.writeBulk != nil:
		conn.WriteBulk(output.writeBulk)
	case output.writeArray != nil:
		conn.WriteArray(len(output.writeArray))
		for _, item := range output.writeArray {
			conn.WriteBulkString(item)
		}
	default:
		conn.WriteString(output.writeString)
	}
}

// RunRedisServer serves the Redis protocol on top of `backend` until `ctx` is done, then closes the backend.
func RunRedisServer(ctx context.Context, backend *NumberBackend) error {
	if *address == "" {
		return errors.New("expected a non-empty --address flag")
	}

	redisHandler, err := newRedisHandler(backend)
	if err != nil {
		return fmt.Errorf("failed to create a new redis handler: %w", err)
	}

	redisServer := redcon.NewServerNetwork("tcp" /*net*/, *address,
		/*handler*/ func(conn redcon.Conn, cmd redcon.Command) {
			command := redisCommand{command: string(cmd.Args[0]), args: make([]string, len(cmd.Args)-1)}
			for i := 1; i < len(cmd.Args); i++ {
				command.args[i-1] = string(cmd.Args[i])
			}
			writeOutput(conn, redisHandler.handle(command))
		},
		/*accept*/ func(conn redcon.Conn) bool {
			slog.Debug("Accepted connection.", "remote", conn.RemoteAddr())
			return true
		},
		/*close*/ func(conn redcon.Conn, err error) {
			if err != nil {
				slog.Debug("Connection closed with error.", "remote", conn.RemoteAddr(), "error", err)
			}
		})

	serverErrSignal := make(chan error, 1)
	go func() {
		if err := redisServer.ListenAndServe(); err != nil {
			serverErrSignal <- err
		}
		close(serverErrSignal)
	}()
	slog.Info("Serving the Redis protocol.", "address", *address)

	select {
	case <-ctx.Done():
		serverErr := redisServer.Close()
		backendErr := backend.Close()
		if exitErr := errors.Join(serverErr, backendErr); exitErr != nil {
			return fmt.Errorf("failed to close octa: %w", exitErr)
		}
	case err := <-serverErrSignal:
		return fmt.Errorf("redis server stopped unexpectedly: %w", errors.Join(err, backend.Close()))
	}

	return nil // Exited with no errors.
}
