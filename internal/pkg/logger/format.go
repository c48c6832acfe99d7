package logger

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"
)

type TimeNanosecond time.Time

func (j *TimeNanosecond) UnmarshalJSON(b []byte) error {
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*j = TimeNanosecond(time.Unix(0, v))
	return nil
}

func (j TimeNanosecond) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(j))
}

// Entry is the decoded form of one Messages element.
type Entry struct {
	Ts     TimeNanosecond `json:"ts"`
	Caller string         `json:"caller"`
	Msg    string         `json:"msg"`
	Level  int            `json:"level"`

	Device   string `json:"device_name"`
	Config   string `json:"config"`
	DeviceID *int   `json:"device_id"`
}

func Unpack(data []byte) (Entry, error) {
	var v Entry
	err := json.Unmarshal(data, &v)
	return v, err
}

func gray(v uint8) aurora.Color {
	if v > 23 {
		v = 23
	}
	return aurora.Color(232+v) << 16
}

func color(r, g, b uint8) aurora.Color {
	return aurora.Color(16+36*r+6*g+b) << 16
}

// colorForString picks a stable pseudo-random color for a string.
func colorForString(au aurora.Aurora, s string) aurora.Value {
	h := fnv.New32a()
	h.Write([]byte(s))
	sum := h.Sum32()

	r, g, b := uint8(sum)&0b00000111, uint8(sum>>8)&0b00000111, uint8(sum>>16)&0b00000111
	if r > 5 {
		r = 5
	}
	if g > 5 {
		g = 5
	}
	if b > 5 {
		b = 5
	}

	// avoid dark colors
	if r+g+b < 3 {
		r += 1
		g += 1
		b += 1
	}

	return au.Index(16+36*r+6*g+b, s)
}

// Format renders an entry for terminal output. Entries above logLevel come
// back empty.
func Format(msg Entry, au aurora.Aurora, logLevel int) string {
	if msg.Level > logLevel {
		return ""
	}

	var msgColor aurora.Color
	switch msg.Level {
	case ErrorLvl:
		msgColor = color(5, 1, 1)
	case WarningLvl:
		msgColor = color(5, 5, 1)
	case InfoLvl:
		msgColor = gray(18)
	case ActionLvl:
		msgColor = gray(18)
	case EventsLvl:
		msgColor = gray(15)
	case DebugLvl:
		msgColor = gray(9)
	}

	t := time.Time(msg.Ts)
	timestamp := fmt.Sprintf(
		"[%s]",
		au.Reset(t.Format("15:04:05.000")).Colorize(color(1, 1, 5)).String(),
	)

	fields := ""
	if msg.Config != "" {
		fields += fmt.Sprintf(" [config=%s]", colorForString(au, msg.Config).String())
	}
	if msg.Device != "" {
		fields += fmt.Sprintf(" [dev=%s]", colorForString(au, msg.Device).String())
	}
	if msg.DeviceID != nil {
		fields += fmt.Sprintf(" [id=%d]", *msg.DeviceID)
	}
	if logLevel >= DebugLvl && msg.Caller != "" {
		x := strings.SplitN(msg.Caller, ":", 2)
		if len(x) == 2 {
			fields += fmt.Sprintf(" (%s:%s)", colorForString(au, x[0]).String(), x[1])
		}
	}

	m := au.Reset(msg.Msg).Colorize(msgColor).String()
	return fmt.Sprintf("%s %s%s", timestamp, m, fields)
}
