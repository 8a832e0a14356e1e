package sink

import (
	"testing"

	kafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"gotest.tools/v3/assert"

	"github.com/leengari/logminer-core/internal/catalog"
	"github.com/leengari/logminer-core/internal/redo"
)

type fakeProducer struct {
	messages []*kafka.Message
}

func (f *fakeProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	f.messages = append(f.messages, msg)
	return nil
}

func testCatalog() catalog.Catalog {
	return catalog.NewStaticCatalog([]*catalog.Object{
		{Objn: 10, Name: "ACCOUNTS", Columns: []catalog.Column{
			{Name: "NAME", TypeNo: valuefmtVarchar},
			{Name: "BALANCE", TypeNo: valuefmtNumber},
		}},
	})
}

// local aliases so this test file doesn't need a direct valuefmt import
// just for two type constants.
const (
	valuefmtVarchar = 1
	valuefmtNumber  = 2
)

func TestKafkaSinkParseDmlProducesOneMessagePerRow(t *testing.T) {
	fp := &fakeProducer{}
	k := NewKafkaSink(fp, "cdc.accounts", testCatalog(), nil)

	rec := &redo.RedoLogRecord{
		Objn: 10,
		Cc:   2,
		Columns: &redo.Columns{
			Values: [][]byte{[]byte("alice"), {0xC0 + 1, 50 + 1}},
		},
	}

	assert.NilError(t, k.BeginTran(100, redo.NewXid(1, 2, 3)))
	assert.NilError(t, k.ParseDml(DmlInsert, rec, nil))
	assert.NilError(t, k.CommitTran())

	assert.Equal(t, len(fp.messages), 1)
	assert.Assert(t, len(fp.messages[0].Value) > 0)
}

func TestKafkaSinkParseDdlProducesTruncateEnvelope(t *testing.T) {
	fp := &fakeProducer{}
	k := NewKafkaSink(fp, "cdc.accounts", testCatalog(), nil)

	assert.NilError(t, k.BeginTran(200, redo.NewXid(1, 2, 3)))
	assert.NilError(t, k.ParseDdl(&redo.RedoLogRecord{Objn: 10}))
	assert.NilError(t, k.CommitTran())
	assert.Equal(t, len(fp.messages), 1)
}

func TestKafkaSinkCatalogMissStillProducesWithNoValues(t *testing.T) {
	fp := &fakeProducer{}
	k := NewKafkaSink(fp, "cdc.accounts", catalog.NewStaticCatalog(nil), nil)

	rec := &redo.RedoLogRecord{Objn: 999, Cc: 1, Columns: &redo.Columns{Values: [][]byte{[]byte("x")}}}
	assert.NilError(t, k.BeginTran(1, redo.NewXid(0, 0, 1)))
	assert.NilError(t, k.ParseDml(DmlInsert, rec, nil))
	assert.Equal(t, len(fp.messages), 1)
}
