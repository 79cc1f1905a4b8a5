package attnmt

import (
	"errors"
	"strings"

	"github.com/unixpickle/serializer"
)

func init() {
	var v Vocab
	serializer.RegisterTypedDeserializer(v.SerializerType(), DeserializeVocab)
}

// Sentinel tokens present in every vocabulary.
const (
	BOS     = "<s>"
	EOS     = "</s>"
	Unknown = "<unk>"
)

// Ids of the sentinel tokens.
const (
	BOSID = iota
	EOSID
	UnknownID
)

// A Vocab maps tokens to integer ids.
//
// While a Vocab is not frozen, unseen tokens are given new
// ids. Once frozen, unseen tokens map to UnknownID.
type Vocab struct {
	tokens []string
	ids    map[string]int
	frozen bool
}

// NewVocab creates an unfrozen vocabulary containing only
// the sentinel tokens.
func NewVocab() *Vocab {
	v := &Vocab{ids: map[string]int{}}
	for _, tok := range []string{BOS, EOS, Unknown} {
		v.Convert(tok)
	}
	return v
}

// DeserializeVocab deserializes a Vocab.
// The resulting vocabulary is frozen.
func DeserializeVocab(d []byte) (*Vocab, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, err
	}
	if len(slice) != 1 {
		return nil, errors.New("invalid Vocab slice")
	}
	joined, ok := slice[0].(serializer.Bytes)
	if !ok {
		return nil, errors.New("invalid Vocab slice")
	}
	tokens := strings.Split(string(joined), "\n")
	if len(tokens) < 3 || tokens[BOSID] != BOS || tokens[EOSID] != EOS ||
		tokens[UnknownID] != Unknown {
		return nil, errors.New("invalid Vocab sentinels")
	}
	v := &Vocab{ids: map[string]int{}}
	for _, tok := range tokens {
		v.Convert(tok)
	}
	v.Freeze()
	return v, nil
}

// Convert returns the id of a token.
func (v *Vocab) Convert(token string) int {
	if id, ok := v.ids[token]; ok {
		return id
	}
	if v.frozen {
		return UnknownID
	}
	id := len(v.tokens)
	v.tokens = append(v.tokens, token)
	v.ids[token] = id
	return id
}

// Token returns the token for an id.
// Out of range ids yield the unknown token.
func (v *Vocab) Token(id int) string {
	if id < 0 || id >= len(v.tokens) {
		return Unknown
	}
	return v.tokens[id]
}

// Len returns the number of tokens.
func (v *Vocab) Len() int {
	return len(v.tokens)
}

// Freeze stops the vocabulary from growing.
func (v *Vocab) Freeze() {
	v.frozen = true
}

// Unfreeze lets the vocabulary grow again.
func (v *Vocab) Unfreeze() {
	v.frozen = false
}

// Frozen reports whether the vocabulary is frozen.
func (v *Vocab) Frozen() bool {
	return v.frozen
}

// Encode converts tokens to ids, optionally wrapping them
// in BOS and EOS.
func (v *Vocab) Encode(tokens []string, boundary bool) []int {
	res := make([]int, 0, len(tokens)+2)
	if boundary {
		res = append(res, BOSID)
	}
	for _, tok := range tokens {
		res = append(res, v.Convert(tok))
	}
	if boundary {
		res = append(res, EOSID)
	}
	return res
}

// Decode converts ids to tokens, dropping BOS and EOS.
func (v *Vocab) Decode(ids []int) []string {
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == BOSID || id == EOSID {
			continue
		}
		res = append(res, v.Token(id))
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// a Vocab with the serializer package.
func (v *Vocab) SerializerType() string {
	return "github.com/unixpickle/attnmt.Vocab"
}

// Serialize serializes the token list.
// Tokens never contain newlines, so they are joined by
// newlines.
func (v *Vocab) Serialize() ([]byte, error) {
	joined := serializer.Bytes(strings.Join(v.tokens, "\n"))
	return serializer.SerializeSlice([]serializer.Serializer{joined})
}
