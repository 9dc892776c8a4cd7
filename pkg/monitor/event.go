package monitor

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes"
	structpb "github.com/golang/protobuf/ptypes/struct"
)

// Event kinds.
const (
	KindState    = "state"
	KindTraffic  = "traffic"
	KindStations = "stations"
)

// Event is published for every state change and forwarded chunk.
type Event struct {
	Kind      string
	Role      string
	Node      string
	State     string
	Direction string
	Bytes     int
	Payload   []byte
	Joined    []string
	Left      []string
	Stations  int
	Time      time.Time
}

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

func numberValue(n float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: n}}
}

func listValue(items []string) *structpb.Value {
	values := make([]*structpb.Value, 0, len(items))
	for _, item := range items {
		values = append(values, stringValue(item))
	}
	return &structpb.Value{Kind: &structpb.Value_ListValue{ListValue: &structpb.ListValue{Values: values}}}
}

func stringList(v *structpb.Value) []string {
	var items []string
	for _, item := range v.GetListValue().GetValues() {
		items = append(items, item.GetStringValue())
	}
	return items
}

// Encode serializes the event as a protobuf Struct.
func (e *Event) Encode() ([]byte, error) {
	ts, err := ptypes.TimestampProto(e.Time)
	if err != nil {
		return nil, err
	}
	fields := map[string]*structpb.Value{
		"kind": stringValue(e.Kind),
		"role": stringValue(e.Role),
		"node": stringValue(e.Node),
		"time": stringValue(ptypes.TimestampString(ts)),
	}
	switch e.Kind {
	case KindState:
		fields["state"] = stringValue(e.State)
	case KindTraffic:
		fields["direction"] = stringValue(e.Direction)
		fields["bytes"] = numberValue(float64(e.Bytes))
		fields["payload"] = stringValue(base64.StdEncoding.EncodeToString(e.Payload))
	case KindStations:
		fields["joined"] = listValue(e.Joined)
		fields["left"] = listValue(e.Left)
		fields["stations"] = numberValue(float64(e.Stations))
	}
	return proto.Marshal(&structpb.Struct{Fields: fields})
}

// DecodeEvent parses an encoded event.
func DecodeEvent(data []byte) (*Event, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	str := func(key string) string {
		return s.Fields[key].GetStringValue()
	}
	e := &Event{
		Kind:      str("kind"),
		Role:      str("role"),
		Node:      str("node"),
		State:     str("state"),
		Direction: str("direction"),
		Bytes:     int(s.Fields["bytes"].GetNumberValue()),
		Joined:    stringList(s.Fields["joined"]),
		Left:      stringList(s.Fields["left"]),
		Stations:  int(s.Fields["stations"].GetNumberValue()),
	}
	if e.Kind == "" {
		return nil, fmt.Errorf("event without kind")
	}
	if t := str("time"); t != "" {
		ts, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return nil, err
		}
		e.Time = ts
	}
	if p := str("payload"); p != "" {
		payload, err := base64.StdEncoding.DecodeString(p)
		if err != nil {
			return nil, err
		}
		e.Payload = payload
	}
	return e, nil
}

// String formats the event for a log line.
func (e *Event) String() string {
	switch e.Kind {
	case KindState:
		return fmt.Sprintf("%s %s/%s: %s", e.Time.Format(time.StampMilli), e.Role, e.Node, e.State)
	case KindTraffic:
		return fmt.Sprintf("%s %s/%s: %s %d bytes %q", e.Time.Format(time.StampMilli),
			e.Role, e.Node, e.Direction, e.Bytes, e.Payload)
	case KindStations:
		return fmt.Sprintf("%s %s/%s: %d stations joined %v left %v", e.Time.Format(time.StampMilli),
			e.Role, e.Node, e.Stations, e.Joined, e.Left)
	}
	return fmt.Sprintf("%s %s/%s: %s", e.Time.Format(time.StampMilli), e.Role, e.Node, e.Kind)
}
