package bios

import "github.com/valerio/go-advance/advance/memory"

// Size of the BIOS region.
const Size = 0x4000

// Protection words: what BIOS reads return while executing outside the
// BIOS, depending on the last BIOS code that ran.
const (
	ProtectedAfterReset uint32 = 0xE129F000
	ProtectedAfterIRQ   uint32 = 0xE55EC002
)

// Addresses inside the built-in image.
const (
	IRQHandler  uint32 = 0x128
	WaitHandler uint32 = 0x140
)

var stubCode = []struct {
	address uint32
	words   []uint32
}{
	// vectors
	{0x00, []uint32{
		0xEAFFFFFE, // reset: b .
		0xE1B0F00E, // undefined: movs pc, lr
		0xEA00004C, // swi: b WaitHandler
		0xE25EF004, // prefetch abort: subs pc, lr, #4
		0xE25EF008, // data abort: subs pc, lr, #8
		0xEAFFFFFE, // reserved
		0xEA000042, // irq: b IRQHandler
		0xE25EF004, // fiq: subs pc, lr, #4
	}},
	{IRQHandler, []uint32{
		0xE92D500F, // stmfd sp!, {r0-r3, r12, lr}
		0xE3A00301, // mov r0, #0x04000000
		0xE28FE000, // add lr, pc, #0
		0xE510F004, // ldr pc, [r0, #-4]
		0xE8BD500F, // ldmfd sp!, {r0-r3, r12, lr}
		0xE25EF004, // subs pc, lr, #4
	}},
	// IntrWait/VBlankIntrWait: r0 = discard old flags, r1 = flags to wait
	// for, checked against the IntrCheck word at 0x03FFFFF8.
	{WaitHandler, []uint32{
		0xE92D400C, // stmfd sp!, {r2, r3, lr}
		0xE55EC002, // ldrb r12, [lr, #-2]
		0xE35C0005, // cmp r12, #5
		0x03A00001, // moveq r0, #1
		0x03A01001, // moveq r1, #1
		0xE3A0C301, // mov r12, #0x04000000
		0xE3A02001, // mov r2, #1
		0xE5CC2208, // strb r2, [r12, #0x208]
		0xE321F01F, // msr cpsr_c, #0x1F
		0xE3500000, // cmp r0, #0
		0x115C30B8, // ldrneh r3, [r12, #-8]
		0x11C33001, // bicne r3, r3, r1
		0x114C30B8, // strneh r3, [r12, #-8]
		0xE1A00000, // nop
		0xE3A02000, // mov r2, #0
		0xE5CC2301, // strb r2, [r12, #0x301]
		0xE15C30B8, // ldrh r3, [r12, #-8]
		0xE0132001, // ands r2, r3, r1
		0x0AFFFFFA, // beq halt loop
		0xE0233002, // eor r3, r3, r2
		0xE14C30B8, // strh r3, [r12, #-8]
		0xE321F093, // msr cpsr_c, #0x93
		0xE8BD400C, // ldmfd sp!, {r2, r3, lr}
		0xE1B0F00E, // movs pc, lr
	}},
}

// Stub returns the built-in BIOS image.
func Stub() []byte {
	image := make([]byte, Size)
	for _, block := range stubCode {
		for i, word := range block.words {
			memory.Write32(image, block.address+uint32(i)*4, word)
		}
	}
	return image
}
