package export

import (
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"gamesales/internal/engine"
)

// RecordSchema is the Arrow schema of exported records. Rank and year are
// null when absent.
var RecordSchema = arrow.NewSchema([]arrow.Field{
	{Name: "rank", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	{Name: "name", Type: arrow.BinaryTypes.String},
	{Name: "platform", Type: arrow.BinaryTypes.String},
	{Name: "year", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
	{Name: "genre", Type: arrow.BinaryTypes.String},
	{Name: "publisher", Type: arrow.BinaryTypes.String},
	{Name: "na_sales", Type: arrow.PrimitiveTypes.Float64},
	{Name: "eu_sales", Type: arrow.PrimitiveTypes.Float64},
	{Name: "jp_sales", Type: arrow.PrimitiveTypes.Float64},
	{Name: "other_sales", Type: arrow.PrimitiveTypes.Float64},
	{Name: "global_sales", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// WriteArrow writes records as a single-batch Arrow IPC stream.
func WriteArrow(w io.Writer, records []engine.Record) error {
	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, RecordSchema)
	defer b.Release()

	rank := b.Field(0).(*array.Int64Builder)
	name := b.Field(1).(*array.StringBuilder)
	platform := b.Field(2).(*array.StringBuilder)
	year := b.Field(3).(*array.Int32Builder)
	genre := b.Field(4).(*array.StringBuilder)
	publisher := b.Field(5).(*array.StringBuilder)
	sales := []*array.Float64Builder{
		b.Field(6).(*array.Float64Builder),
		b.Field(7).(*array.Float64Builder),
		b.Field(8).(*array.Float64Builder),
		b.Field(9).(*array.Float64Builder),
		b.Field(10).(*array.Float64Builder),
	}
	b.Reserve(len(records))

	for _, r := range records {
		if r.Rank != 0 {
			rank.Append(int64(r.Rank))
		} else {
			rank.AppendNull()
		}
		name.Append(r.Name)
		platform.Append(r.Platform)
		if y, ok := r.YearValue(); ok {
			year.Append(int32(y))
		} else {
			year.AppendNull()
		}
		genre.Append(r.Genre)
		publisher.Append(r.Publisher)
		for i, v := range []float64{r.NASales, r.EUSales, r.JPSales, r.OtherSales, r.GlobalSales} {
			sales[i].Append(v)
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(RecordSchema), ipc.WithAllocator(mem))
	if err := iw.Write(rec); err != nil {
		_ = iw.Close()
		return err
	}
	return iw.Close()
}
