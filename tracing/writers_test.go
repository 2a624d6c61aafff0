package tracing

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arqsim/datarecording"
)

var sampleRecords = []Record{
	{Time: 0, Entity: Sender, Action: ActionStartSend, SeqNum: 0, Window: "[0 1 2]"},
	{Time: 1, Entity: Sender, Action: ActionFrameSent, SeqNum: 0, Window: "[0 1 2]"},
	{Time: 2.5, Entity: Receiver, Action: ActionFrameAccepted, SeqNum: 0, Window: "[1]"},
}

var _ = Describe("CSVTraceWriter", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should write a header and the records", func() {
		w := NewCSVTraceWriter(filepath.Join(dir, "trace"))
		Expect(w.Init()).To(Succeed())
		Expect(w.Path()).To(HaveSuffix("trace.csv"))

		for _, r := range sampleRecords {
			w.Write(r)
		}
		Expect(w.Close()).To(Succeed())
		Expect(w.Close()).To(Succeed())

		f, err := os.Open(w.Path())
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		rows, err := csv.NewReader(f).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(4))
		Expect(rows[0]).To(Equal(
			[]string{"time", "entity", "action", "seq_num", "window"}))
		Expect(rows[3]).To(Equal(
			[]string{"2.5", "receiver", "Frame accepted", "0", "[1]"}))
	})

	It("should refuse to overwrite a file", func() {
		path := filepath.Join(dir, "exists.csv")
		Expect(os.WriteFile(path, nil, 0o644)).To(Succeed())

		w := NewCSVTraceWriter(path)
		Expect(w.Init()).NotTo(Succeed())
	})
})

var _ = Describe("JSONTraceWriter", func() {
	It("should write one record per line", func() {
		w := NewJSONTraceWriter(filepath.Join(GinkgoT().TempDir(), "trace"))
		Expect(w.Init()).To(Succeed())
		Expect(w.Path()).To(HaveSuffix(".jsonl"))

		for _, r := range sampleRecords {
			w.Write(r)
		}
		Expect(w.Close()).To(Succeed())

		f, err := os.Open(w.Path())
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		var read []Record
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			var r Record
			Expect(json.Unmarshal(scanner.Bytes(), &r)).To(Succeed())
			read = append(read, r)
		}

		Expect(read).To(Equal(sampleRecords))
	})
})

var _ = Describe("DBTraceWriter", func() {
	It("should store records that the reader can page through", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace")
		recorder, err := datarecording.New(path)
		Expect(err).NotTo(HaveOccurred())

		w := NewDBTraceWriter(recorder)
		Expect(w.Init()).To(Succeed())
		for _, r := range sampleRecords {
			w.Write(r)
		}
		w.Flush()
		Expect(recorder.Close()).To(Succeed())

		dr, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer dr.Close()

		reader := NewDBTraceReader(dr)

		all, total, err := reader.ListRecords(context.Background(), 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(3))
		Expect(all).To(Equal(sampleRecords))

		page, _, err := reader.ListRecords(context.Background(), 1, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(page).To(Equal(sampleRecords[1:2]))

		rest, _, err := reader.ListRecords(context.Background(), 2, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(rest).To(Equal(sampleRecords[2:]))
	})
})
