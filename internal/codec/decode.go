package codec

import (
	"encoding/json"
	"fmt"

	"cc-live/internal/live"
)

// Decode classifies one text frame. It never panics: malformed input yields
// ErrMalformed and an unrecognised tag yields *UnknownKindError.
func Decode(frame []byte) (msg Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			msg = nil
			err = fmt.Errorf("%w: decode panic: %v", ErrMalformed, r)
		}
	}()

	var head map[string]json.RawMessage
	if err := json.Unmarshal(frame, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if head == nil {
		return nil, fmt.Errorf("%w: frame is not an object", ErrMalformed)
	}
	rawType, ok := head["type"]
	if !ok {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	var kind string
	if err := json.Unmarshal(rawType, &kind); err != nil {
		return nil, fmt.Errorf("%w: type is not a string", ErrMalformed)
	}

	switch kind {
	case TypeConnection:
		return decodeConnection(frame)
	case TypeFullDataUpdate:
		return decodeFullData(frame)
	case TypeStatusResponse:
		return decodeStatusResponse(frame)
	case TypeViewerIDAck:
		return decodeViewerIDAck(frame)
	case TypeGameEvent:
		return decodeGameEvent(frame)
	case TypeGameScoreUpdate:
		return decodeGameScoreUpdate(frame)
	case TypeGameRoundChange:
		return decodeRoundChange(frame)
	case TypeGlobalScoreUpdate:
		return decodeGlobalScore(frame)
	case TypeGlobalEvent:
		return decodeGlobalEvent(frame)
	case TypeVoteEvent:
		return decodeVoteEvent(frame)
	case TypePong:
		return decodePong(frame)
	default:
		return nil, &UnknownKindError{Kind: kind}
	}
}

func unmarshalPayload(kind string, frame []byte, v any) error {
	if err := json.Unmarshal(frame, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, kind, err)
	}
	return nil
}

func decodeConnection(frame []byte) (Message, error) {
	var w connectionWire
	if err := unmarshalPayload(TypeConnection, frame, &w); err != nil {
		return nil, err
	}
	return ConnectionAck{
		Status:    w.Status,
		Text:      w.Message,
		ClientID:  w.ClientID,
		Timestamp: timestampPtr(w.Timestamp),
	}, nil
}

func decodeFullData(frame []byte) (Message, error) {
	var w fullDataWire
	if err := unmarshalPayload(TypeFullDataUpdate, frame, &w); err != nil {
		return nil, err
	}
	msg := FullSnapshot{
		GlobalScores:     w.Data.GlobalScores,
		CurrentGameScore: mapField(w.Data.CurrentGameScore, (*predictionWire).toLive),
		CurrentVote:      w.Data.CurrentVote,
		GameStatus:       w.Data.GameStatus,
		RecentEvents:     mapField(w.Data.RecentEvents, eventsToLive),
		Timestamp:        timestampPtr(w.Timestamp),
	}
	if cs := w.Data.ConnectionStatus; cs != nil {
		msg.Connection = &ConnectionStatus{
			Connected:       cs.Connected,
			ViewerID:        cs.ViewerID,
			ClientID:        cs.ClientID,
			ConnectionCount: cs.ConnectionCount,
			LastPing:        timestampPtr(cs.LastPing),
		}
	}
	return msg, nil
}

func decodeStatusResponse(frame []byte) (Message, error) {
	var w statusResponseWire
	if err := unmarshalPayload(TypeStatusResponse, frame, &w); err != nil {
		return nil, err
	}
	return StatusEcho{ConnectionCount: w.ConnectionCount, ClientInfo: w.ClientInfo}, nil
}

func decodeViewerIDAck(frame []byte) (Message, error) {
	var w viewerIDAckWire
	if err := unmarshalPayload(TypeViewerIDAck, frame, &w); err != nil {
		return nil, err
	}
	return ViewerIDAck{ViewerID: w.ViewerID}, nil
}

func decodeGameEvent(frame []byte) (Message, error) {
	var w gameEventWire
	if err := unmarshalPayload(TypeGameEvent, frame, &w); err != nil {
		return nil, err
	}
	ev := w.Data.toLive(w.GameID)
	ts := timestampPtr(w.Timestamp)
	if ev.OccurredAt.IsZero() && ts != nil {
		ev.OccurredAt = *ts
	}
	return GameEvent{
		GameID:     w.GameID,
		Event:      ev,
		Prediction: w.ScorePrediction.toLive(),
		Timestamp:  ts,
	}, nil
}

func decodeGameScoreUpdate(frame []byte) (Message, error) {
	var w gameScoreUpdateWire
	if err := unmarshalPayload(TypeGameScoreUpdate, frame, &w); err != nil {
		return nil, err
	}
	msg := ScoreDelta{
		GameID:       w.GameID,
		TotalUpdates: w.Data.TotalUpdates,
		Scores:       w.Data.Scores,
		Prediction:   w.ScorePrediction.toLive(),
		Timestamp:    timestampPtr(w.Timestamp),
	}
	if w.Data.Event != "" {
		ev := live.GameEvent{
			GameID: w.GameID,
			Player: w.Data.Player,
			Team:   w.Data.Team,
			Kind:   w.Data.Event,
			Detail: w.Data.Lore,
		}
		if msg.Timestamp != nil {
			ev.OccurredAt = *msg.Timestamp
		}
		msg.Event = &ev
	}
	return msg, nil
}

func decodeRoundChange(frame []byte) (Message, error) {
	var w roundChangeWire
	if err := unmarshalPayload(TypeGameRoundChange, frame, &w); err != nil {
		return nil, err
	}
	if w.GameID == "" {
		return nil, fmt.Errorf("%w: %s: missing game_id", ErrMalformed, TypeGameRoundChange)
	}
	return RoundChange{GameID: w.GameID, Round: w.Round, Timestamp: timestampPtr(w.Timestamp)}, nil
}

func decodeGlobalScore(frame []byte) (Message, error) {
	var w globalScoreWire
	if err := unmarshalPayload(TypeGlobalScoreUpdate, frame, &w); err != nil {
		return nil, err
	}
	return GlobalScoreReplace{
		TotalTeams: w.Data.TotalTeams,
		TeamScores: w.Data.TeamScores,
		Timestamp:  timestampPtr(w.Timestamp),
	}, nil
}

func decodeGlobalEvent(frame []byte) (Message, error) {
	var w globalEventWire
	if err := unmarshalPayload(TypeGlobalEvent, frame, &w); err != nil {
		return nil, err
	}
	return StatusReplace{Status: w.Data, Timestamp: timestampPtr(w.Timestamp)}, nil
}

func decodeVoteEvent(frame []byte) (Message, error) {
	var w voteEventWire
	if err := unmarshalPayload(TypeVoteEvent, frame, &w); err != nil {
		return nil, err
	}
	return VoteReplace{Vote: w.Data, Timestamp: timestampPtr(w.Timestamp)}, nil
}

func decodePong(frame []byte) (Message, error) {
	var w pongWire
	if err := unmarshalPayload(TypePong, frame, &w); err != nil {
		return nil, err
	}
	return Heartbeat{Timestamp: timestampPtr(w.Timestamp)}, nil
}
