package loader_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/r32sim/loader"
)

// image builds a program image with an explicit header length.
func image(declared uint32, body []byte) []byte {
	buf := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(buf, declared)
	return append(buf, body...)
}

var _ = Describe("Image Loader", func() {
	Describe("Read", func() {
		It("should return the bytes that follow the header", func() {
			body := []byte{0x05, 0x00, 0x20, 0x48, 0xFF, 0xFF, 0xFF, 0xFF}

			prog, err := loader.Read(bytes.NewReader(image(8, body)))

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Data).To(Equal(body))
			Expect(prog.Size()).To(Equal(uint32(8)))
		})

		It("should accept an empty program", func() {
			prog, err := loader.Read(bytes.NewReader(image(0, nil)))

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Data).To(BeEmpty())
		})

		It("should fail when the body is shorter than declared", func() {
			_, err := loader.Read(bytes.NewReader(image(8, []byte{1, 2, 3})))

			Expect(err).To(MatchError(loader.ErrTruncated))
			Expect(err.Error()).To(ContainSubstring("reached EOF"))
			Expect(loader.IsFormatError(err)).To(BeTrue())
		})

		It("should fail when the header itself is short", func() {
			_, err := loader.Read(bytes.NewReader([]byte{1, 0}))

			Expect(errors.Is(err, loader.ErrTruncated)).To(BeTrue())
		})

		It("should fail when bytes remain after the declared length", func() {
			_, err := loader.Read(bytes.NewReader(image(4, []byte{1, 2, 3, 4, 5})))

			Expect(err).To(MatchError(loader.ErrTrailingData))
			Expect(err.Error()).To(ContainSubstring("remained"))
			Expect(loader.IsFormatError(err)).To(BeTrue())
		})

		It("should not trust a huge declared length", func() {
			_, err := loader.Read(bytes.NewReader(image(0xFFFFFFFF, []byte{1})))

			Expect(err).To(MatchError(loader.ErrTruncated))
		})
	})

	Describe("WriteTo", func() {
		It("should produce an image that reads back", func() {
			prog := &loader.Program{Data: []byte{9, 8, 7, 6}}

			var buf bytes.Buffer
			n, err := prog.WriteTo(&buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(8)))
			Expect(buf.Bytes()[:4]).To(Equal([]byte{4, 0, 0, 0}))

			back, err := loader.Read(&buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(back.Data).To(Equal(prog.Data))
		})
	})

	Describe("Load", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "image-loader-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should load an image from disk", func() {
			path := filepath.Join(tempDir, "prog.bin")
			Expect(os.WriteFile(path, image(4, []byte{1, 2, 3, 4}), 0o644)).To(Succeed())

			prog, err := loader.Load(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Data).To(Equal([]byte{1, 2, 3, 4}))
		})

		It("should report a missing file as an open failure", func() {
			_, err := loader.Load(filepath.Join(tempDir, "missing.bin"))

			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
			Expect(loader.IsFormatError(err)).To(BeFalse())
		})
	})
})
