package chip8

import "testing"

func TestOpFields(t *testing.T) {
	op := Op(0xd4a7)
	if g := op.Family(); g != 0xd {
		t.Errorf("Family() = %x, want d", g)
	}
	if g := op.X(); g != 0x4 {
		t.Errorf("X() = %x, want 4", g)
	}
	if g := op.Y(); g != 0xa {
		t.Errorf("Y() = %x, want a", g)
	}
	if g := op.N(); g != 0x7 {
		t.Errorf("N() = %x, want 7", g)
	}
	if g := op.NN(); g != 0xa7 {
		t.Errorf("NN() = %x, want a7", g)
	}
	if g := op.NNN(); g != 0x4a7 {
		t.Errorf("NNN() = %x, want 4a7", g)
	}
}

func TestOpString(t *testing.T) {
	for op, want := range map[Op]string{
		0x00e0: "CLS",
		0x00ee: "RET",
		0x0123: "SYS 0x123",
		0x1234: "JP 0x234",
		0x2300: "CALL 0x300",
		0x3a22: "SE VA, 0x22",
		0x4b01: "SNE VB, 0x01",
		0x5120: "SE V1, V2",
		0x5121: "DW 0x5121",
		0x6fbc: "LD VF, 0xbc",
		0x7105: "ADD V1, 0x05",
		0x8120: "LD V1, V2",
		0x8124: "ADD V1, V2",
		0x8126: "SHR V1, V2",
		0x8127: "SUBN V1, V2",
		0x812e: "SHL V1, V2",
		0x8128: "DW 0x8128",
		0x9120: "SNE V1, V2",
		0xa123: "LD I, 0x123",
		0xb300: "JP V0, 0x300",
		0xc10f: "RND V1, 0x0f",
		0xd015: "DRW V0, V1, 5",
		0xe29e: "SKP V2",
		0xe2a1: "SKNP V2",
		0xe2a2: "DW 0xe2a2",
		0xf307: "LD V3, DT",
		0xf30a: "LD V3, K",
		0xf315: "LD DT, V3",
		0xf318: "LD ST, V3",
		0xf31e: "ADD I, V3",
		0xf329: "LD F, V3",
		0xf333: "LD B, V3",
		0xf355: "LD [I], V3",
		0xf365: "LD V3, [I]",
		0xf366: "DW 0xf366",
	} {
		if got := op.String(); got != want {
			t.Errorf("Op(%.4x).String() = %q, want %q", uint16(op), got, want)
		}
	}
}
