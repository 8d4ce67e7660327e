package validation_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/uwvsim/internal/kinematics"
	"github.com/san-kum/uwvsim/internal/validation"
)

var _ = Describe("closed-form references", func() {
	DescribeTable("SteadySpeed",
		func(force, lin, quad, want float64) {
			Expect(validation.SteadySpeed(force, lin, quad)).To(BeNumerically("~", want, 1e-12))
		},
		Entry("unit force 2", 2.0, 1.0, 1.0, 1.0),
		Entry("negative force", -2.0, 1.0, 1.0, -1.0),
		Entry("linear only", 3.0, 2.0, 0.0, 1.5),
		Entry("zero force", 0.0, 1.0, 1.0, 0.0),
	)

	It("wraps the yaw reference", func() {
		Expect(validation.YawAngle(0.1, 10)).To(BeNumerically("~", 1.0, 1e-12))
		Expect(validation.YawAngle(0.1, 40)).To(BeNumerically("~", 4-2*math.Pi, 1e-12))
	})

	Describe("Nutation", func() {
		n := validation.Nutation{Jt: 200, J3: 100, W0: r3.Vec{X: 0.05, Z: 0.01}}

		It("starts at identity with the initial rates", func() {
			q := n.Orientation(0)
			Expect(kinematics.QuatAngle(q, quat.Number{Real: 1})).To(BeNumerically("<", 1e-12))
			Expect(n.AngularVelocity(0)).To(Equal(n.W0))
		})

		It("keeps the momentum fixed in inertial space", func() {
			h := n.Momentum()
			for _, t := range []float64{0, 100, 1234.5, 3600} {
				w := n.AngularVelocity(t)
				body := r3.Vec{X: n.Jt * w.X, Y: n.Jt * w.Y, Z: n.J3 * w.Z}
				inertial := kinematics.Rotate(n.Orientation(t), body)
				Expect(r3.Norm(r3.Sub(inertial, h))).To(BeNumerically("<", 1e-9), "t=%g", t)
			}
		})

		It("turns the transverse rate at the body nutation rate", func() {
			Expect(n.BodyRate()).To(BeNumerically("~", 0.005, 1e-12))
			w := n.AngularVelocity(3600)
			Expect(w.X).To(BeNumerically("~", 0.05*math.Cos(18), 1e-12))
			Expect(w.Z).To(Equal(0.01))
		})
	})
})

var _ = Describe("validation cases", func() {
	ctx := context.Background()
	log := zerolog.Nop()

	It("lists the four cases", func() {
		names := []string{}
		for _, c := range validation.Cases() {
			names = append(names, c.Name)
		}
		Expect(names).To(ConsistOf("steady_surge", "buoyancy", "constant_yaw", "nutation"))
		_, err := validation.Lookup("free_fall")
		Expect(err).To(HaveOccurred())
	})

	DescribeTable("short cases pass",
		func(name string) {
			c, err := validation.Lookup(name)
			Expect(err).NotTo(HaveOccurred())
			rep := validation.Run(ctx, c, log)
			Expect(rep.Err).NotTo(HaveOccurred())
			for _, chk := range rep.Checks {
				Expect(chk.Passed()).To(BeTrue(), "%s: got %g want %g ± %g", chk.Quantity, chk.Got, chk.Want, chk.Tol)
			}
			Expect(rep.Passed()).To(BeTrue())
		},
		Entry("surge", "steady_surge"),
		Entry("buoyancy", "buoyancy"),
	)

	It("runs the hour-long cases on an ensemble", Label("slow"), func() {
		if shortMode() {
			Skip("one simulated hour per case")
		}
		yaw, _ := validation.Lookup("constant_yaw")
		nut, _ := validation.Lookup("nutation")
		reports, err := validation.RunAll(ctx, []validation.Case{yaw, nut}, 2, log)
		Expect(err).NotTo(HaveOccurred())
		Expect(reports).To(HaveLen(2))
		for _, rep := range reports {
			for _, chk := range rep.Checks {
				Expect(chk.Passed()).To(BeTrue(), "%s %s: got %g", rep.Case, chk.Quantity, chk.Got)
			}
		}
		var pitch []validation.Check
		for _, chk := range reports[1].Checks {
			if chk.Quantity == "max |pitch| [rad]" {
				pitch = append(pitch, chk)
			}
		}
		Expect(pitch).To(HaveLen(1))
		Expect(pitch[0].Got).To(BeNumerically("<", math.Pi/2-1e-3))
	})

	It("rejects a pitch at gimbal lock", func() {
		chk := validation.Check{Quantity: "max |pitch| [rad]", Got: math.Pi / 2, Want: 0, Tol: math.Pi/2 - 1e-3}
		Expect(chk.Passed()).To(BeFalse())
		chk.Got = 1.5687
		Expect(chk.Passed()).To(BeTrue())
	})

	It("fails a report with an error or no checks", func() {
		Expect(validation.Report{Case: "empty"}.Passed()).To(BeFalse())
		rep := validation.Report{Checks: []validation.Check{{Quantity: "x", Got: math.NaN(), Tol: 1}}}
		Expect(rep.Passed()).To(BeFalse())
	})
})
