package power

import (
	"errors"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/tamzrod/vdec-manager/internal/hwreg"
)

var testLayers = Layers{
	Bus:  []Clock{"bus"},
	Core: []Clock{"core0", "core1"},
	Leaf: []Clock{"leaf"},
}

var _ = Describe("Sequencer", func() {
	var (
		mockCtrl *gomock.Controller
		platform *MockPlatform
		seq      *Sequencer
		slept    []time.Duration
	)

	expectEnable := func() []any {
		return []any{
			platform.EXPECT().EnableClock(Clock("bus")),
			platform.EXPECT().EnableClock(Clock("core0")),
			platform.EXPECT().EnableClock(Clock("core1")),
			platform.EXPECT().EnableClock(Clock("leaf")),
		}
	}

	expectDisable := func() []any {
		return []any{
			platform.EXPECT().DisableClock(Clock("leaf")),
			platform.EXPECT().DisableClock(Clock("core1")),
			platform.EXPECT().DisableClock(Clock("core0")),
			platform.EXPECT().DisableClock(Clock("bus")),
		}
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		platform = NewMockPlatform(mockCtrl)
		slept = nil

		var err error
		seq, err = New(Config{
			Layers:       testLayers,
			ResetDelay:   time.Millisecond,
			RestoreDelay: 2 * time.Millisecond,
			Logger:       slog.New(slog.DiscardHandler),
			Sleep:        func(d time.Duration) { slept = append(slept, d) },
		}, platform)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should enable bus, core, then leaf clocks", func() {
		gomock.InOrder(expectEnable()...)

		Expect(seq.EnableClock()).To(Succeed())
		Expect(seq.Snapshot().Depth).To(Equal(1))
	})

	It("should disable in the exact reverse order", func() {
		gomock.InOrder(append(expectEnable(), expectDisable()...)...)

		Expect(seq.EnableClock()).To(Succeed())
		Expect(seq.DisableClock()).To(Succeed())
		Expect(seq.Snapshot().Depth).To(Equal(0))
	})

	It("should not touch the platform when disabling at depth zero", func() {
		Expect(seq.DisableClock()).To(Succeed())
	})

	It("should gate the clocks it already enabled when one fails", func() {
		gomock.InOrder(
			platform.EXPECT().EnableClock(Clock("bus")),
			platform.EXPECT().EnableClock(Clock("core0")),
			platform.EXPECT().EnableClock(Clock("core1")).Return(errors.New("stuck")),
			platform.EXPECT().DisableClock(Clock("core0")),
			platform.EXPECT().DisableClock(Clock("bus")),
		)

		Expect(seq.EnableClock()).To(MatchError(ContainSubstring("core1")))
		Expect(seq.Snapshot().Depth).To(Equal(0))
	})

	It("should leave no clock on after a failed enable and a balanced pair", func() {
		calls := []any{
			platform.EXPECT().EnableClock(Clock("bus")),
			platform.EXPECT().EnableClock(Clock("core0")).Return(errors.New("stuck")),
			platform.EXPECT().DisableClock(Clock("bus")),
		}
		calls = append(calls, expectEnable()...)
		calls = append(calls, expectDisable()...)
		gomock.InOrder(calls...)

		Expect(seq.EnableClock()).NotTo(Succeed())
		Expect(seq.EnableClock()).To(Succeed())
		Expect(seq.DisableClock()).To(Succeed())
		// nothing enabled: no platform calls
		Expect(seq.DisableClock()).To(Succeed())
		Expect(seq.Snapshot().Depth).To(Equal(0))
	})

	It("should pulse reset with the configured delay", func() {
		gomock.InOrder(
			platform.EXPECT().AssertReset(),
			platform.EXPECT().DeassertReset(),
		)

		Expect(seq.Reset()).To(Succeed())
		Expect(slept).To(Equal([]time.Duration{time.Millisecond}))
	})

	Context("retune", func() {
		It("should program the clock tree once for a repeated size", func() {
			r := DefaultTiers[TierFHD]
			platform.EXPECT().SetRate(Clock("bus"), r.Bus).Times(1)
			platform.EXPECT().SetRate(Clock("core0"), r.Core).Times(1)
			platform.EXPECT().SetRate(Clock("core1"), r.Core).Times(1)
			platform.EXPECT().SetRate(Clock("leaf"), r.Leaf).Times(1)

			changed, err := seq.Retune(1920, 1080)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())

			changed, err = seq.Retune(1920, 1080)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeFalse())

			Expect(seq.Snapshot().Retunes).To(Equal(1))
		})

		It("should reprogram when the size changes", func() {
			platform.EXPECT().SetRate(gomock.Any(), gomock.Any()).Times(8)

			_, err := seq.Retune(640, 480)
			Expect(err).NotTo(HaveOccurred())
			_, err = seq.Retune(3840, 2160)
			Expect(err).NotTo(HaveOccurred())

			Expect(seq.Snapshot().Tier).To(Equal("uhd"))
		})

		It("should not cache a size whose programming failed", func() {
			platform.EXPECT().SetRate(Clock("bus"), gomock.Any()).Return(errors.New("pll"))
			_, err := seq.Retune(1280, 720)
			Expect(err).To(HaveOccurred())

			platform.EXPECT().SetRate(gomock.Any(), gomock.Any()).Times(4)
			changed, err := seq.Retune(1280, 720)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
		})

		It("should reapply after the cache is forgotten", func() {
			platform.EXPECT().SetRate(gomock.Any(), gomock.Any()).Times(8)

			_, _ = seq.Retune(720, 480)
			seq.ForgetResolution()
			changed, _ := seq.Retune(720, 480)
			Expect(changed).To(BeTrue())
		})
	})

	Context("restore", func() {
		It("should cycle clocks once per open reference inside a reset window", func() {
			calls := expectEnable()
			calls = append(calls, expectEnable()...)
			calls = append(calls, platform.EXPECT().AssertReset())
			calls = append(calls, expectDisable()...)
			calls = append(calls, expectDisable()...)
			calls = append(calls, expectEnable()...)
			calls = append(calls, expectEnable()...)
			calls = append(calls, platform.EXPECT().DeassertReset())
			gomock.InOrder(calls...)

			Expect(seq.EnableClock()).To(Succeed())
			Expect(seq.EnableClock()).To(Succeed())

			Expect(seq.Restore(2)).To(Succeed())
			Expect(seq.Snapshot().Depth).To(Equal(2))
			Expect(slept).To(Equal([]time.Duration{2 * time.Millisecond}))
		})

		It("should clamp the count to the enable depth", func() {
			calls := expectEnable()
			calls = append(calls, platform.EXPECT().AssertReset())
			calls = append(calls, expectDisable()...)
			calls = append(calls, expectEnable()...)
			calls = append(calls, platform.EXPECT().DeassertReset())
			gomock.InOrder(calls...)

			Expect(seq.EnableClock()).To(Succeed())
			Expect(seq.Restore(3)).To(Succeed())
			Expect(seq.Snapshot().Depth).To(Equal(1))
		})
	})
})

var _ = DescribeTable("Classify",
	func(w, h int, want Tier) {
		Expect(Classify(w, h)).To(Equal(want))
	},
	Entry("4k", 3840, 2160, TierUHD),
	Entry("1080p", 1920, 1088, TierFHD),
	Entry("720p", 1280, 720, TierHD),
	Entry("just above 720p", 1282, 720, TierFHD),
	Entry("480p", 720, 480, TierSD),
	Entry("qcif", 176, 144, TierSD),
)

var _ = Describe("RegisterPlatform", func() {
	var (
		mem *hwreg.Memory
		p   *RegisterPlatform
	)

	BeforeEach(func() {
		mem = hwreg.NewMemory(hwreg.Layout{})
		var err error
		p, err = NewRegisterPlatform(mem, RegisterMap{}, testLayers)
		Expect(err).NotTo(HaveOccurred())
	})

	gate := func() uint32 {
		v, _ := mem.Read(DefaultRegisterMap.GateAddr)
		return v
	}

	It("should reference count gate bits", func() {
		Expect(p.EnableClock("core1")).To(Succeed())
		Expect(p.EnableClock("core1")).To(Succeed())
		Expect(gate()).To(Equal(uint32(1 << 2)))

		Expect(p.DisableClock("core1")).To(Succeed())
		Expect(gate()).To(Equal(uint32(1 << 2)))

		Expect(p.DisableClock("core1")).To(Succeed())
		Expect(gate()).To(BeZero())

		Expect(p.DisableClock("core1")).To(Succeed())
		Expect(gate()).To(BeZero())
	})

	It("should write rates in kHz", func() {
		Expect(p.SetRate("leaf", 150_000_000)).To(Succeed())
		v, _ := mem.Read(DefaultRegisterMap.RateBase + 6)
		Expect(v).To(Equal(uint32(150_000)))
	})

	It("should drive the reset register", func() {
		Expect(p.AssertReset()).To(Succeed())
		v, _ := mem.Read(DefaultRegisterMap.ResetAddr)
		Expect(v).To(Equal(uint32(1)))

		Expect(p.DeassertReset()).To(Succeed())
		v, _ = mem.Read(DefaultRegisterMap.ResetAddr)
		Expect(v).To(BeZero())
	})

	It("should reject unknown and duplicate clocks", func() {
		Expect(p.EnableClock("gpu")).NotTo(Succeed())

		_, err := NewRegisterPlatform(mem, RegisterMap{}, Layers{Bus: []Clock{"a"}, Leaf: []Clock{"a"}})
		Expect(err).To(HaveOccurred())
	})
})
