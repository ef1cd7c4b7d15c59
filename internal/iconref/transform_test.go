package iconref

import (
	"encoding/json"
	"testing"
)

func TestTransformRoundTrip(t *testing.T) {
	cases := []string{
		`{"type":"BlendColor","color":"#808080","mode":2}`,
		`{"type":"BlendIcon","icon":{"icon_file":"t.dmi","icon_state":"s"},"mode":3,"x":2,"y":3}`,
		`{"type":"Scale","w":64,"h":64}`,
		`{"type":"Crop","x1":-4,"y1":1,"x2":36,"y2":32}`,
		`{"type":"Flip","dir":1}`,
		`{"type":"Turn","angle":90}`,
		`{"type":"Shift","dir":2,"offset":4,"wrap":true}`,
		`{"type":"MapColors","r":[1,0,0,0],"g":[0,1,0,0],"b":[0,0,1,0],"a":[0,0,0,1],"constant":[0,0,0,0]}`,
	}
	for _, raw := range cases {
		var tr Transform
		if err := json.Unmarshal([]byte(raw), &tr); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		out, err := json.Marshal(tr)
		if err != nil {
			t.Fatalf("marshal %s: %v", raw, err)
		}
		var tr2 Transform
		if err := json.Unmarshal(out, &tr2); err != nil {
			t.Fatalf("re-unmarshal %s: %v", raw, err)
		}
		if tr.Key() != tr2.Key() {
			t.Errorf("round-trip key mismatch for %s: %q != %q", raw, tr.Key(), tr2.Key())
		}
	}
}

func TestTransformKeyDistinguishesFloats(t *testing.T) {
	a := Transform{Kind: KindTurn, Turn: &TurnParams{AngleDeg: 90}}
	b := Transform{Kind: KindTurn, Turn: &TurnParams{AngleDeg: 90.0001}}
	if a.Key() == b.Key() {
		t.Errorf("distinct angles produced the same key")
	}
}

func TestBlendColorDefaultMode(t *testing.T) {
	var tr Transform
	if err := json.Unmarshal([]byte(`{"type":"BlendColor","color":"#FF0000"}`), &tr); err != nil {
		t.Fatal(err)
	}
	if tr.BlendColor.Mode != BlendAdd {
		t.Errorf("expected default mode BlendAdd, got %v", tr.BlendColor.Mode)
	}
}

func TestUnknownTransformType(t *testing.T) {
	var tr Transform
	if err := json.Unmarshal([]byte(`{"type":"Nonsense"}`), &tr); err == nil {
		t.Errorf("expected error for unknown transform type")
	}
}
