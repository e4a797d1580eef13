package slackbot

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"salesbot/internal/ingest"
	"salesbot/internal/session"
)

const attendanceFixture = `01/01/2024 - 31/01/2024
;08h;;09h;
Vendedor;At.;Pot.;At.;Pot.
Ana;5;1;3;0
`

const salesFixture = `Vendedor;Cod;Qtde;A;B;C;Itens;D;Valor;E;Ticket;F
Ana;x;4;x;x;x;1,5;x;"400,00";x;"100,00";x
Beto;x;2;x;x;x;1,0;x;"150,00";x;"75,00";x
Caio;x;1;x;x;x;2,0;x;"90,00";x;"90,00";x
`

func TestParseFilterArgs(t *testing.T) {
	from, to, err := parseFilterArgs("05/03/2024")
	if err != nil {
		t.Fatalf("single date failed: %v", err)
	}
	if from.Day() != 5 || from.Month() != time.March {
		t.Fatalf("from = %v", from)
	}
	if !to.IsZero() {
		t.Fatalf("single date should leave `to` zero, got %v", to)
	}

	from, to, err = parseFilterArgs("  01/03/2024   15/03/2024 ")
	if err != nil {
		t.Fatalf("two dates failed: %v", err)
	}
	if from.Day() != 1 || to.Day() != 15 {
		t.Fatalf("range = %v..%v", from, to)
	}

	for _, bad := range []string{"", "um dois tres", "ontem", "01/03/2024 02/03/2024 03/03/2024"} {
		if _, _, err := parseFilterArgs(bad); err == nil {
			t.Errorf("parseFilterArgs(%q) should fail", bad)
		}
	}
}

func TestLoadUploadRoutesByNameHint(t *testing.T) {
	sess := session.New(nil)

	msg := loadUpload(sess, "atendimentos-jan.csv", []byte(attendanceFixture))
	if !strings.Contains(msg, "attendance") || !strings.Contains(msg, "01/01/2024 - 31/01/2024") {
		t.Fatalf("attendance upload message = %q", msg)
	}
	msg = loadUpload(sess, "pdv-jan.csv", []byte(salesFixture))
	if !strings.Contains(msg, "sales") {
		t.Fatalf("sales upload message = %q", msg)
	}

	view := sess.Consolidated()
	if view.AttendanceFiles != 1 || view.SalesFiles != 1 {
		t.Fatalf("files landed in the wrong slots: %+v", view)
	}
}

func TestLoadUploadRetriesOtherSlot(t *testing.T) {
	sess := session.New(nil)

	// The name hints at sales but the content is an attendance export;
	// the wrong-slot rejection must re-route it.
	msg := loadUpload(sess, "relatorio-vendas.csv", []byte(attendanceFixture))
	if !strings.Contains(msg, "attendance") {
		t.Fatalf("misnamed attendance upload message = %q", msg)
	}

	// And the reverse: no sales hint, but the content is a PDV export.
	msg = loadUpload(sess, "relatorio.csv", []byte(salesFixture))
	if !strings.Contains(msg, "sales") {
		t.Fatalf("misnamed sales upload message = %q", msg)
	}

	view := sess.Consolidated()
	if view.AttendanceFiles != 1 || view.SalesFiles != 1 {
		t.Fatalf("files landed in the wrong slots: %+v", view)
	}
}

func TestLoadUploadReportsErrors(t *testing.T) {
	sess := session.New(nil)

	if _, err := sess.AddAttendance("jan.csv", []byte(attendanceFixture)); err != nil {
		t.Fatalf("seed upload failed: %v", err)
	}
	msg := loadUpload(sess, "jan.csv", []byte(attendanceFixture))
	if !strings.Contains(msg, "already loaded") {
		t.Fatalf("duplicate message = %q", msg)
	}

	msg = loadUpload(sess, "broken.csv", []byte("garbage"))
	if !strings.Contains(msg, "Could not read") {
		t.Fatalf("format error message = %q", msg)
	}
}

func TestUploadErrorMessageBranches(t *testing.T) {
	dup := fmt.Errorf("%w: jan.csv", session.ErrDuplicateFile)
	if msg := uploadErrorMessage("jan.csv", ingest.SlotAttendance, dup); !strings.Contains(msg, "already loaded") {
		t.Errorf("duplicate branch = %q", msg)
	}

	var format error = &ingest.FormatError{Reason: "no valid salesperson rows found"}
	if msg := uploadErrorMessage("x.csv", ingest.SlotSales, format); !strings.Contains(msg, "no valid salesperson rows found") {
		t.Errorf("format branch = %q", msg)
	}

	other := errors.New("boom")
	if msg := uploadErrorMessage("x.csv", ingest.SlotSales, other); !strings.Contains(msg, "boom") {
		t.Errorf("fallback branch = %q", msg)
	}
}

func TestSalesNameHint(t *testing.T) {
	for name, want := range map[string]bool{
		"pdv-jan.csv":         true,
		"Vendas_Marco.csv":    true,
		"sales-export.csv":    true,
		"atendimentos.csv":    false,
		"relatorio-horas.csv": false,
	} {
		if got := salesNameHint(name); got != want {
			t.Errorf("salesNameHint(%q) = %v, want %v", name, got, want)
		}
	}
}
