package journey

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		basePath string
		storage  *LocalStorage
	)

	BeforeEach(func() {
		basePath = filepath.Join(GinkgoT().TempDir(), "itineraries")
		var err error
		storage, err = NewLocalStorage(basePath)
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates the directory", func() {
		info, err := os.Stat(basePath)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})

	Describe("Save", func() {
		It("writes the file and returns its name", func() {
			name, err := storage.Save("id_itinerary.png", []byte("image"))
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("id_itinerary.png"))

			data, err := os.ReadFile(filepath.Join(basePath, "id_itinerary.png"))
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("image")))
		})

		It("keeps files inside the storage directory", func() {
			name, err := storage.Save("../escape.png", []byte("image"))
			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal("escape.png"))
			Expect(filepath.Join(basePath, "escape.png")).To(BeAnExistingFile())
		})

		It("rejects empty names", func() {
			_, err := storage.Save("", []byte("image"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Get", func() {
		It("reads a saved file", func() {
			_, err := storage.Save("a.png", []byte("image"))
			Expect(err).NotTo(HaveOccurred())

			data, err := storage.Get("a.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("image")))
		})

		It("returns an error for missing files", func() {
			_, err := storage.Get("missing.png")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Delete", func() {
		It("removes a saved file", func() {
			_, err := storage.Save("a.png", []byte("image"))
			Expect(err).NotTo(HaveOccurred())

			Expect(storage.Delete("a.png")).To(Succeed())
			Expect(filepath.Join(basePath, "a.png")).NotTo(BeAnExistingFile())
		})

		It("returns an error for missing files", func() {
			Expect(storage.Delete("missing.png")).NotTo(Succeed())
		})
	})
})
